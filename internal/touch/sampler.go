// Package touch turns per-cycle contact samples into touch and swipe events.
//
// Sampler is owned by the touch goroutine. Its only output is Sink,
// normally the event queue shared with the display goroutine.
package touch

import (
	"fmt"
	"time"

	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/log2"
	"go.uber.org/atomic"
)

const (
	DefaultMoveThreshold  = 5
	DefaultSwipeThreshold = 50
)

type Hardware interface {
	// PollTouch returns calibrated coordinates, ok=false when nothing is pressed.
	PollTouch() (x, y int, ok bool)
	PollRawTouch() (rawX, rawY int)
}

type Sink interface {
	TrySend(types.Event) bool
}

type State uint8

const (
	StateIdle State = iota
	StatePressed
	StateMoving
	// Released is transient, sampler passes through it to Idle within one cycle.
	StateReleased
)

var stateNames = [...]string{"Idle", "Pressed", "Moving", "Released"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

type SamplerConfig struct {
	// Movement must exceed this many pixels on either axis, compared to previous sample.
	MoveThreshold int
	// Start to end distance must exceed this to recognize swipe.
	SwipeThreshold int
}

func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		MoveThreshold:  DefaultMoveThreshold,
		SwipeThreshold: DefaultSwipeThreshold,
	}
}

type SamplerStat struct {
	Down    uint64
	Move    uint64
	Up      uint64
	Swipe   uint64
	Dropped uint64
}

type Sampler struct {
	Config SamplerConfig

	hw    Hardware
	sink  Sink
	log   *log2.Log
	clock func() time.Time
	epoch time.Time

	state        State
	startX       int32
	startY       int32
	startMs      uint32
	lastX, lastY int32
	lastRawX     int32
	lastRawY     int32

	stat struct {
		down    atomic.Uint64
		move    atomic.Uint64
		up      atomic.Uint64
		swipe   atomic.Uint64
		dropped atomic.Uint64
	}
}

func NewSampler(hw Hardware, sink Sink, log *log2.Log) *Sampler {
	self := &Sampler{
		Config: DefaultSamplerConfig(),
		hw:     hw,
		sink:   sink,
		log:    log,
	}
	self.SetClock(time.Now)
	return self
}

// SetClock replaces time source, event timestamps restart from zero.
func (self *Sampler) SetClock(clock func() time.Time) {
	self.clock = clock
	self.epoch = clock()
}

func (self *Sampler) State() State { return self.state }

// Stat is safe to call from any goroutine.
func (self *Sampler) Stat() SamplerStat {
	return SamplerStat{
		Down:    self.stat.down.Load(),
		Move:    self.stat.move.Load(),
		Up:      self.stat.up.Load(),
		Swipe:   self.stat.swipe.Load(),
		Dropped: self.stat.dropped.Load(),
	}
}

// Sample runs one polling cycle. Never blocks on the sink.
func (self *Sampler) Sample() {
	x, y, present := self.hw.PollTouch()
	if present {
		rx, ry := self.hw.PollRawTouch()
		self.pressed(int32(x), int32(y), int32(rx), int32(ry))
		return
	}
	switch self.state {
	case StatePressed, StateMoving:
		self.released()
	}
}

func (self *Sampler) pressed(x, y, rx, ry int32) {
	now := self.nowMs()
	switch self.state {
	case StateIdle, StateReleased:
		self.setState(StatePressed)
		self.startX, self.startY, self.startMs = x, y, now
		self.emit(types.NewTouch(types.EventTouchDown, x, y, rx, ry, now), &self.stat.down)

	case StatePressed, StateMoving:
		th := int32(self.Config.MoveThreshold)
		if abs32(x-self.lastX) > th || abs32(y-self.lastY) > th {
			self.setState(StateMoving)
			self.emit(types.NewTouch(types.EventTouchMove, x, y, rx, ry, now), &self.stat.move)
		}
	}
	self.lastX, self.lastY = x, y
	self.lastRawX, self.lastRawY = rx, ry
}

func (self *Sampler) released() {
	now := self.nowMs()
	self.setState(StateReleased)
	self.emit(types.NewTouch(types.EventTouchUp, self.lastX, self.lastY, self.lastRawX, self.lastRawY, now), &self.stat.up)
	if dir := self.detect(self.startX, self.startY, self.lastX, self.lastY); dir != types.DirectionNone {
		self.emit(types.NewSwipe(dir, self.startX, self.startY, self.lastX, self.lastY, now-self.startMs), &self.stat.swipe)
	}
	self.setState(StateIdle)
}

func (self *Sampler) detect(x1, y1, x2, y2 int32) types.Direction {
	return DetectSwipe(x1, y1, x2, y2, self.Config.SwipeThreshold)
}

// DetectSwipe classifies straight movement from start to end.
// Whole pixel distance must be strictly greater than threshold.
// Dominant axis wins, equal magnitudes count as vertical.
func DetectSwipe(x1, y1, x2, y2 int32, threshold int) types.Direction {
	dx, dy := int64(x2-x1), int64(y2-y1)
	// distance > t  <=>  d2 > t^2
	t := int64(threshold)
	if dx*dx+dy*dy <= t*t {
		return types.DirectionNone
	}
	if abs64(dx) > abs64(dy) {
		if dx > 0 {
			return types.DirectionRight
		}
		return types.DirectionLeft
	}
	if dy > 0 {
		return types.DirectionDown
	}
	return types.DirectionUp
}

func (self *Sampler) emit(e types.Event, counter *atomic.Uint64) {
	if self.sink.TrySend(e) {
		counter.Inc()
		return
	}
	self.stat.dropped.Inc()
	self.log.Debugf("touch queue full, dropped %s", e.String())
}

func (self *Sampler) setState(s State) {
	if self.log.Enabled(log2.LDebug) && s != self.state {
		self.log.Debugf("touch state %s -> %s", self.state.String(), s.String())
	}
	self.state = s
}

func (self *Sampler) nowMs() uint32 {
	return uint32(self.clock().Sub(self.epoch) / time.Millisecond)
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
