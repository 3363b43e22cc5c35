package screens

import (
	"fmt"

	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	"github.com/temoto/touchpanel/internal/ui/widget"
)

// Raw readout is redrawn only when it moved more than this.
const rawRedrawDelta = 50

// Home shows last contact position, swipe up opens Menu.
type Home struct {
	base
	touched    bool
	x, y       int32
	rawX, rawY int32
}

func NewHome(m *ui.Manager) *Home {
	return &Home{base: newBase(m, types.ScreenHome, "Home")}
}

func (self *Home) Init() { self.SetNeedsRedraw(true) }

func (self *Home) Draw() {
	r := self.drawFrame()
	r.Text(10, 60, "Touch the screen...", widget.White, 1)
	r.Text(10, 80, "Swipe up for menu", widget.Cyan, 1)
	r.Text(10, 100, fmt.Sprintf("Screen: %d x %d", r.Width(), r.Height()), widget.White, 1)
	r.Text(10, 130, "Touch position:", widget.White, 1)
	if !self.touched {
		return
	}
	r.Text(10, 150, fmt.Sprintf("X: %d", self.x), widget.White, 1)
	r.Text(10, 165, fmt.Sprintf("Y: %d", self.y), widget.White, 1)
	r.Text(10, 185, fmt.Sprintf("Raw: X=%d, Y=%d", self.rawX, self.rawY), widget.Yellow, 1)
}

// Position returns last shown contact, ok=false before first touch.
func (self *Home) Position() (x, y, rawX, rawY int32, ok bool) {
	return self.x, self.y, self.rawX, self.rawY, self.touched
}

func (self *Home) HandleEvent(e types.Event) {
	if e.Kind != types.EventTouchDown && e.Kind != types.EventTouchMove {
		return
	}
	t := &e.Touch
	if self.touched && t.X == self.x && t.Y == self.y {
		return
	}
	if !self.touched || abs32(t.RawX-self.rawX) > rawRedrawDelta || abs32(t.RawY-self.rawY) > rawRedrawDelta {
		self.rawX, self.rawY = t.RawX, t.RawY
	}
	self.x, self.y = t.X, t.Y
	self.touched = true
	self.SetNeedsRedraw(true)
}

func (self *Home) OnSwipeUp() { self.navigate(types.ScreenMenu, types.TransitionSlideUp) }

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
