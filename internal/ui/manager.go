// Package ui owns screen registry and routes queued events to the active screen.
// Everything here runs on display goroutine, no locks.
package ui

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/log2"
)

// Upper bound on events handled per Drain, so Update still runs when screens
// keep feeding navigation requests back into queue.
const MaxDrain = 256

var ErrTransitioning = errors.New("transition in progress")

type Manager struct {
	// Builtin registers default screen set during Init.
	Builtin func(*Manager)
	// Swipes longer than this do not reach OnSwipe* hooks. Zero disables check.
	SwipeMaxDuration time.Duration

	display       Renderer
	log           *log2.Log
	screens       map[types.ScreenID]Screen
	requests      Sender
	active        types.ScreenID
	hasActive     bool
	transitioning bool
	lastReject    error

	XXX_testHook func(types.ScreenID)
}

func NewManager(display Renderer, log *log2.Log) *Manager {
	return &Manager{
		display: display,
		log:     log,
		screens: make(map[types.ScreenID]Screen, types.ScreenCount),
	}
}

func (self *Manager) Display() Renderer { return self.display }
func (self *Manager) Log() *log2.Log    { return self.log }

// SetRequests sets queue for navigation requests made through Request.
func (self *Manager) SetRequests(s Sender) { self.requests = s }

// RegisterScreen replaces screen with same id. Nil removes.
func (self *Manager) RegisterScreen(id types.ScreenID, s Screen) {
	if s == nil {
		delete(self.screens, id)
		return
	}
	if _, ok := self.screens[id]; ok {
		self.log.Debugf("ui screen=%s replaced", id.String())
	}
	self.screens[id] = s
}

func (self *Manager) Screen(id types.ScreenID) (Screen, bool) {
	s, ok := self.screens[id]
	return s, ok
}

func (self *Manager) Init(ctx context.Context) error {
	if self.Builtin != nil {
		self.Builtin(self)
	}
	if _, ok := self.screens[types.ScreenHome]; !ok {
		return errors.NotFoundf("ui screen=%s", types.ScreenHome.String())
	}
	self.log.Debugf("ui init screens=%d", len(self.screens))
	if !self.TransitionTo(types.ScreenHome, types.TransitionNone) {
		return errors.Annotate(self.lastReject, "ui initial transition")
	}
	return nil
}

// CurrentScreenID returns Home when nothing is active yet.
func (self *Manager) CurrentScreenID() types.ScreenID {
	if !self.hasActive {
		return types.ScreenHome
	}
	return self.active
}

func (self *Manager) IsTransitioning() bool { return self.transitioning }

// LastReject is reason of latest refused transition.
func (self *Manager) LastReject() error { return self.lastReject }

// Request enqueues navigation, processed on next Drain in order with touch events.
// Without request queue falls back to immediate TransitionTo.
func (self *Manager) Request(id types.ScreenID, kind types.TransitionKind) bool {
	if self.requests == nil {
		return self.TransitionTo(id, kind)
	}
	if !self.requests.TrySend(types.NewScreenChange(id, kind)) {
		self.log.Errorf("ui navigation request screen=%s dropped, queue full", id.String())
		return false
	}
	return true
}

func (self *Manager) TransitionTo(id types.ScreenID, kind types.TransitionKind) bool {
	if self.transitioning {
		return self.reject(errors.Annotatef(ErrTransitioning, "ui transition to=%s", id.String()))
	}
	target, ok := self.screens[id]
	if !ok {
		return self.reject(errors.NotFoundf("ui screen=%s", id.String()))
	}
	var current Screen
	if self.hasActive {
		if self.active == id {
			return self.reject(errors.AlreadyExistsf("ui screen=%s active", id.String()))
		}
		current = self.screens[self.active]
		if current != nil && !current.CanTransitionTo(id) {
			return self.reject(errors.Forbiddenf("ui transition %s -> %s", self.active.String(), id.String()))
		}
	}

	self.transitioning = true
	self.log.Debugf("ui transition %s -> %s effect=%s", self.describeActive(), id.String(), kind.String())
	if current != nil {
		current.OnExit()
	}
	self.display.Transition(kind)
	target.Init()
	self.draw(target)
	target.OnEnter()
	self.active, self.hasActive = id, true
	self.transitioning = false

	if self.XXX_testHook != nil {
		self.XXX_testHook(id)
	}
	return true
}

func (self *Manager) HandleEvent(e types.Event) {
	if !self.hasActive {
		return
	}
	if self.transitioning {
		self.log.Debugf("ui ignored during transition %s", e.String())
		return
	}
	if e.Kind == types.EventScreenChange {
		self.TransitionTo(e.ScreenChange.Target, e.ScreenChange.Transition)
		return
	}
	s := self.screens[self.active]
	s.HandleEvent(e)
	if e.Kind == types.EventGestureSwipe {
		self.swipe(s, &e.Gesture)
	}
}

func (self *Manager) Update() {
	if self.transitioning || !self.hasActive {
		return
	}
	s := self.screens[self.active]
	s.Update()
	if s.NeedsRedraw() {
		self.draw(s)
	}
}

// Drain passes queued events to HandleEvent in order, returns number handled.
func (self *Manager) Drain(src Receiver) int {
	var e types.Event
	n := 0
	for n < MaxDrain && src.TryReceive(&e) {
		self.HandleEvent(e)
		n++
	}
	return n
}

func (self *Manager) swipe(s Screen, g *types.GestureEvent) {
	// screen may have navigated away inside HandleEvent
	if self.screens[self.active] != s {
		return
	}
	if self.SwipeMaxDuration > 0 && time.Duration(g.DurationMs)*time.Millisecond > self.SwipeMaxDuration {
		self.log.Debugf("ui swipe %s too slow duration=%dms", g.Direction.String(), g.DurationMs)
		return
	}
	switch g.Direction {
	case types.DirectionUp:
		s.OnSwipeUp()
	case types.DirectionDown:
		s.OnSwipeDown()
	case types.DirectionLeft:
		s.OnSwipeLeft()
	case types.DirectionRight:
		s.OnSwipeRight()
	}
}

func (self *Manager) draw(s Screen) {
	s.Draw()
	if err := self.display.Flush(); err != nil {
		self.log.Error(errors.Annotatef(err, "ui flush screen=%s", s.ID().String()))
	}
}

func (self *Manager) reject(err error) bool {
	self.lastReject = err
	self.log.Debugf("ui rejected: %v", err)
	return false
}

func (self *Manager) describeActive() string {
	if !self.hasActive {
		return "-"
	}
	return self.active.String()
}
