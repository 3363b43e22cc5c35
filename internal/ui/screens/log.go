package screens

import (
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	"github.com/temoto/touchpanel/internal/ui/widget"
	"github.com/temoto/touchpanel/log2"
)

const logLineHeight = 14

// Log shows tail of recent log lines, newest at bottom.
type Log struct {
	base
	ring    *log2.Ring
	version uint64
}

func NewLog(m *ui.Manager, ring *log2.Ring) *Log {
	self := &Log{base: newBase(m, types.ScreenLog, "Log"), ring: ring}
	self.add(topRight(m.Display(), "Back", backStyle(), self.back))
	return self
}

func (self *Log) Draw() {
	r := self.drawFrame()
	if self.ring == nil {
		r.Text(10, 60, "log capture disabled", widget.Grey, 1)
		return
	}
	self.version = self.ring.Version()
	lines := self.ring.Lines()
	fit := (r.Height() - 60) / logLineHeight
	if len(lines) > fit {
		lines = lines[len(lines)-fit:]
	}
	maxChars := (r.Width() - 20) / r.TextWidth("W", 1)
	for i, line := range lines {
		line = clipRunes(line, maxChars)
		r.Text(10, 58+i*logLineHeight, line, widget.LightGrey, 1)
	}
}

// clipRunes keeps at most n characters, never splits multibyte sequence.
func clipRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func (self *Log) Update() {
	if self.ring != nil && self.ring.Version() != self.version {
		self.SetNeedsRedraw(true)
	}
}

func (self *Log) HandleEvent(e types.Event) { self.handleTouch(&e) }

func (self *Log) OnSwipeUp()    { self.swipeBack() }
func (self *Log) OnSwipeDown()  { self.swipeBack() }
func (self *Log) OnSwipeLeft()  { self.swipeBack() }
func (self *Log) OnSwipeRight() { self.swipeBack() }

func (self *Log) swipeBack() {
	if self.swipeAllowed() {
		self.back()
	}
}

func (self *Log) back() { self.navigate(types.ScreenMenu, types.TransitionSlideRight) }
