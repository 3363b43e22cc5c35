package widget

import (
	"image/color"

	"github.com/temoto/touchpanel/internal/ui"
)

const (
	DialogWidth  = 240
	DialogHeight = 140
)

var overlayColor = color.RGBA{0x20, 0x20, 0x20, 0xff}

// ConfirmDialog is modal Yes/No question centred on screen.
// Owner screen routes touches to HandleTouch while Visible and redraws itself after Hide.
type ConfirmDialog struct {
	Rect
	Title   string
	Message string
	OnYes   func()
	OnNo    func()

	yes     *Button
	no      *Button
	visible bool
}

func NewConfirmDialog(screenW, screenH int, title, message string) *ConfirmDialog {
	self := &ConfirmDialog{
		Rect:    Rect{X: (screenW - DialogWidth) / 2, Y: (screenH - DialogHeight) / 2, W: DialogWidth, H: DialogHeight},
		Title:   title,
		Message: message,
	}
	by := self.Y + self.H - 50
	self.yes = NewButton(self.X+20, by, 90, 35, "Yes", func() {
		self.visible = false
		if self.OnYes != nil {
			self.OnYes()
		}
	})
	self.yes.Style.Normal, self.yes.Style.Pressed, self.yes.Style.ShadowOffset = Green, GreenDark, 0
	self.no = NewButton(self.X+self.W-110, by, 90, 35, "No", func() {
		self.visible = false
		if self.OnNo != nil {
			self.OnNo()
		}
	})
	self.no.Style.Normal, self.no.Style.Pressed, self.no.Style.ShadowOffset = Grey, GreyDark, 0
	return self
}

func (self *ConfirmDialog) Visible() bool      { return self.visible }
func (self *ConfirmDialog) Show()              { self.visible = true }
func (self *ConfirmDialog) Hide()              { self.visible = false }
func (self *ConfirmDialog) YesButton() *Button { return self.yes }
func (self *ConfirmDialog) NoButton() *Button  { return self.no }

// Draw shades whole screen with dot pattern, then dialog box on top.
func (self *ConfirmDialog) Draw(r ui.Renderer) {
	if !self.visible {
		return
	}
	w, h := r.Width(), r.Height()
	for y := 0; y < h; y += 4 {
		for x := 0; x < w; x += 4 {
			r.FillRect(x, y, 2, 2, overlayColor)
		}
	}
	self.drawBox(r)
}

func (self *ConfirmDialog) drawBox(r ui.Renderer) {
	r.FillRoundRect(self.X, self.Y, self.W, self.H, 12, White)
	r.DrawRoundRect(self.X, self.Y, self.W, self.H, 12, LightGrey)
	r.FillRoundRect(self.X, self.Y, self.W, 40, 12, Blue)
	r.FillRect(self.X, self.Y+20, self.W, 20, Blue)
	r.Text(self.X+(self.W-r.TextWidth(self.Title, 1))/2, self.Y+12, self.Title, White, 1)
	r.Text(self.X+(self.W-r.TextWidth(self.Message, 1))/2, self.Y+60, self.Message, Black, 1)
	self.yes.Draw(r)
	self.no.Draw(r)
}

// NeedsRedraw reports pressed state change of dialog buttons.
func (self *ConfirmDialog) NeedsRedraw() bool {
	return self.visible && (self.yes.NeedsRedraw() || self.no.NeedsRedraw())
}

// DrawButtons repaints dialog box without overlay, for press feedback.
func (self *ConfirmDialog) DrawButtons(r ui.Renderer) {
	if self.visible {
		self.drawBox(r)
	}
}

// HandleTouch returns true when Yes or No fired. Contact outside dialog only releases buttons.
func (self *ConfirmDialog) HandleTouch(x, y int, touching bool) bool {
	if !self.visible {
		return false
	}
	if !self.Contains(x, y) {
		if !touching {
			self.yes.HandleTouch(x, y, false)
			self.no.HandleTouch(x, y, false)
		}
		return false
	}
	if self.yes.HandleTouch(x, y, touching) {
		return true
	}
	return self.no.HandleTouch(x, y, touching)
}
