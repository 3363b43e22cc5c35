package widget

import (
	"image/color"

	"github.com/temoto/touchpanel/internal/ui"
)

type ButtonState uint8

const (
	ButtonNormal ButtonState = iota
	ButtonPressed
	ButtonDisabled
)

type ButtonStyle struct {
	Normal       color.RGBA
	Pressed      color.RGBA
	Disabled     color.RGBA
	Text         color.RGBA
	Shadow       color.RGBA
	Border       color.RGBA
	Radius       int
	ShadowOffset int
	BorderWidth  int
	FontSize     int
}

func DefaultButtonStyle() ButtonStyle {
	return ButtonStyle{
		Normal:       Blue,
		Pressed:      BlueDark,
		Disabled:     Grey,
		Text:         White,
		Shadow:       Black,
		Radius:       8,
		ShadowOffset: 3,
		FontSize:     1,
	}
}

// Button fires OnClick when contact is released inside after being pressed inside.
type Button struct {
	Rect
	Text    string
	Style   ButtonStyle
	OnClick func()

	state       ButtonState
	hidden      bool
	needsRedraw bool
}

func NewButton(x, y, w, h int, text string, onClick func()) *Button {
	return &Button{
		Rect:        Rect{X: x, Y: y, W: w, H: h},
		Text:        text,
		Style:       DefaultButtonStyle(),
		OnClick:     onClick,
		needsRedraw: true,
	}
}

func (self *Button) State() ButtonState { return self.state }
func (self *Button) Enabled() bool      { return self.state != ButtonDisabled }
func (self *Button) Visible() bool      { return !self.hidden }
func (self *Button) NeedsRedraw() bool  { return self.needsRedraw }

func (self *Button) SetEnabled(v bool) {
	if v == self.Enabled() {
		return
	}
	if v {
		self.state = ButtonNormal
	} else {
		self.state = ButtonDisabled
	}
	self.needsRedraw = true
}

func (self *Button) SetVisible(v bool) {
	if v != self.Visible() {
		self.hidden = !v
		self.needsRedraw = true
	}
}

func (self *Button) SetText(s string) {
	if s != self.Text {
		self.Text = s
		self.needsRedraw = true
	}
}

// HandleTouch returns true when click fired.
func (self *Button) HandleTouch(x, y int, touching bool) bool {
	if self.hidden || self.state == ButtonDisabled {
		return false
	}
	inside := self.Contains(x, y)
	if touching && inside {
		if self.state != ButtonPressed {
			self.state = ButtonPressed
			self.needsRedraw = true
		}
		return false
	}
	if self.state == ButtonPressed {
		self.state = ButtonNormal
		self.needsRedraw = true
		if !touching && inside {
			if self.OnClick != nil {
				self.OnClick()
			}
			return true
		}
	}
	return false
}

func (self *Button) Draw(r ui.Renderer) {
	self.needsRedraw = false
	if self.hidden {
		return
	}
	st := &self.Style
	fill := st.Normal
	switch self.state {
	case ButtonPressed:
		fill = st.Pressed
	case ButtonDisabled:
		fill = st.Disabled
	}
	// pressed button sinks onto its shadow
	off := 0
	if st.ShadowOffset > 0 {
		if self.state == ButtonPressed {
			off = st.ShadowOffset / 2
		} else {
			r.FillRoundRect(self.X+st.ShadowOffset, self.Y+st.ShadowOffset, self.W, self.H, st.Radius, st.Shadow)
		}
	}
	x, y := self.X+off, self.Y+off
	r.FillRoundRect(x, y, self.W, self.H, st.Radius, fill)
	for i := 0; i < st.BorderWidth; i++ {
		r.DrawRoundRect(x+i, y+i, self.W-2*i, self.H-2*i, st.Radius, st.Border)
	}
	size := st.FontSize
	tx := x + (self.W-r.TextWidth(self.Text, size))/2
	ty := y + (self.H-r.TextHeight(size))/2
	if tx < x+4 {
		tx = x + 4
	}
	if ty < y+2 {
		ty = y + 2
	}
	r.Text(tx, ty, self.Text, st.Text, size)
}
