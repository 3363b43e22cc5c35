package touchscreen

import (
	"sync"

	"github.com/temoto/touchpanel/helpers"
	"github.com/temoto/touchpanel/internal/touch"
)

const MockTag = "mock"

type MockContact struct {
	X, Y    int
	Present bool
}

// Mock replays scripted contacts, one per poll, then holds the last one.
// Safe to script from another goroutine, dev console does that.
type Mock struct {
	Calibration touch.Calibration

	mu     sync.Mutex
	script []MockContact
	cur    MockContact
}

var _ touch.Hardware = new(Mock)

func NewMock(cal touch.Calibration) *Mock { return &Mock{Calibration: cal} }

func (self *Mock) String() string { return MockTag }

func (self *Mock) Push(cs ...MockContact) {
	helpers.WithLock(&self.mu, func() { self.script = append(self.script, cs...) })
}

// Tap is press and release, each held for one poll.
func (self *Mock) Tap(x, y int) {
	self.Push(MockContact{X: x, Y: y, Present: true}, MockContact{})
}

// Swipe interpolates straight line in steps polls then releases.
func (self *Mock) Swipe(x1, y1, x2, y2, steps int) {
	if steps < 1 {
		steps = 1
	}
	cs := make([]MockContact, 0, steps+2)
	for i := 0; i <= steps; i++ {
		cs = append(cs, MockContact{
			X:       x1 + (x2-x1)*i/steps,
			Y:       y1 + (y2-y1)*i/steps,
			Present: true,
		})
	}
	cs = append(cs, MockContact{})
	self.Push(cs...)
}

// Pending returns number of scripted contacts not yet polled.
func (self *Mock) Pending() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.script)
}

func (self *Mock) PollTouch() (int, int, bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if len(self.script) > 0 {
		self.cur, self.script = self.script[0], self.script[1:]
	}
	return self.cur.X, self.cur.Y, self.cur.Present
}

func (self *Mock) PollRawTouch() (int, int) {
	self.mu.Lock()
	c := self.cur
	self.mu.Unlock()
	return self.Calibration.Unmap(c.X, c.Y)
}
