// Package widget has touch controls drawn through ui.Renderer.
// Widgets do not own screen area; the screen decides when to Draw them.
package widget

import (
	"image/color"

	"github.com/temoto/touchpanel/internal/types"
)

var (
	Black      = color.RGBA{0, 0, 0, 0xff}
	White      = color.RGBA{0xff, 0xff, 0xff, 0xff}
	DarkGrey   = color.RGBA{0x40, 0x40, 0x40, 0xff}
	LightGrey  = color.RGBA{200, 200, 200, 0xff}
	Grey       = color.RGBA{158, 158, 158, 0xff}
	GreyDark   = color.RGBA{97, 97, 97, 0xff}
	Blue       = color.RGBA{33, 150, 243, 0xff}
	BlueDark   = color.RGBA{25, 118, 210, 0xff}
	Green      = color.RGBA{76, 175, 80, 0xff}
	GreenDark  = color.RGBA{56, 142, 60, 0xff}
	GreyMid    = color.RGBA{120, 120, 120, 0xff}
	Red        = color.RGBA{244, 67, 54, 0xff}
	RedDark    = color.RGBA{211, 47, 47, 0xff}
	DarkRed    = color.RGBA{183, 28, 28, 0xff}
	Orange     = color.RGBA{255, 152, 0, 0xff}
	OrangeDark = color.RGBA{245, 124, 0, 0xff}
	Slate      = color.RGBA{96, 125, 139, 0xff}
	SlateDark  = color.RGBA{69, 90, 100, 0xff}
	Brown      = color.RGBA{121, 85, 72, 0xff}
	BrownDark  = color.RGBA{93, 64, 55, 0xff}
	Yellow     = color.RGBA{255, 235, 59, 0xff}
	Cyan       = color.RGBA{0, 255, 255, 0xff}
)

type Rect struct {
	X, Y, W, H int
}

// Contains is half-open: right and bottom edges are outside.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Touch extracts contact from touch events. ok=false for other kinds.
// TouchUp reports touching=false with release position.
func Touch(e *types.Event) (x, y int, touching, ok bool) {
	switch e.Kind {
	case types.EventTouchDown, types.EventTouchMove:
		return int(e.Touch.X), int(e.Touch.Y), true, true
	case types.EventTouchUp:
		return int(e.Touch.X), int(e.Touch.Y), false, true
	}
	return 0, 0, false, false
}
