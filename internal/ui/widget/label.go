package widget

import (
	"image/color"

	"github.com/temoto/touchpanel/internal/ui"
)

type Align uint8

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

const labelMargin = 5

type Label struct {
	Rect
	Text       string
	Color      color.RGBA
	Background color.RGBA
	// zero alpha Background draws text only
	Align    Align
	FontSize int
	Hidden   bool
}

func NewLabel(x, y, w, h int, text string) *Label {
	return &Label{
		Rect:     Rect{X: x, Y: y, W: w, H: h},
		Text:     text,
		Color:    White,
		FontSize: 1,
	}
}

func (self *Label) Draw(r ui.Renderer) {
	if self.Hidden {
		return
	}
	if self.Background.A != 0 {
		r.FillRoundRect(self.X, self.Y, self.W, self.H, 8, self.Background)
		r.DrawRoundRect(self.X, self.Y, self.W, self.H, 8, color.RGBA{100, 150, 200, 0xff})
	}
	tx, ty := self.textPos(r)
	r.Text(tx, ty, self.Text, self.Color, self.FontSize)
}

func (self *Label) textPos(r ui.Renderer) (int, int) {
	tw := r.TextWidth(self.Text, self.FontSize)
	var x int
	switch self.Align {
	case AlignLeft:
		x = self.X + labelMargin
	case AlignRight:
		x = self.X + self.W - tw - labelMargin
	default:
		x = self.X + (self.W-tw)/2
	}
	y := self.Y + (self.H-r.TextHeight(self.FontSize))/2
	if x < self.X {
		x = self.X
	}
	if y < self.Y {
		y = self.Y
	}
	return x, y
}
