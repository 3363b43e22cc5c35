package screens

import (
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	"github.com/temoto/touchpanel/internal/ui/widget"
)

// Stub is placeholder for settings pages reachable from Menu, only title and back.
type Stub struct {
	base
}

func NewStub(m *ui.Manager, id types.ScreenID, title string) *Stub {
	self := &Stub{base: newBase(m, id, title)}
	self.add(topRight(m.Display(), "Back", backStyle(), self.back))
	return self
}

func (self *Stub) Draw() {
	r := self.drawFrame()
	r.Text(10, 70, "Nothing to configure yet", widget.Grey, 1)
}

func (self *Stub) HandleEvent(e types.Event) { self.handleTouch(&e) }

func (self *Stub) OnSwipeRight() {
	if self.swipeAllowed() {
		self.back()
	}
}

func (self *Stub) back() { self.navigate(types.ScreenMenu, types.TransitionSlideRight) }
