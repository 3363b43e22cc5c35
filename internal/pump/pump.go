// Package pump runs producer and consumer at fixed wake intervals.
// Touch loop samples hardware into queue, display loop drains queue into screens.
package pump

import (
	"time"

	"github.com/temoto/alive/v2"
	"github.com/temoto/touchpanel/log2"
	"go.uber.org/atomic"
)

const (
	DefaultTouchPeriod   = 10 * time.Millisecond
	DefaultDisplayPeriod = 16 * time.Millisecond
)

type Stat struct {
	Runs     uint64
	Overruns uint64
	LastWake time.Time
}

// Loop calls Body every Period measured from previous wake, not from Body return.
// When Body takes longer than Period, next run starts immediately and counts as overrun.
type Loop struct {
	Name   string
	Period time.Duration
	Body   func()

	log      *log2.Log
	runs     atomic.Uint64
	overruns atomic.Uint64
	lastWake atomic.Int64 // unix nanoseconds, wall clock from now()

	XXX_now   func() time.Time
	XXX_sleep func(stop <-chan struct{}, d time.Duration) bool
}

func NewLoop(name string, period time.Duration, body func(), log *log2.Log) *Loop {
	if period <= 0 {
		panic("code error pump period must be positive name=" + name)
	}
	return &Loop{Name: name, Period: period, Body: body, log: log}
}

// Periodic starts loop goroutine tracked by a. Nil if a is already stopping.
func Periodic(a *alive.Alive, name string, period time.Duration, body func(), log *log2.Log) *Loop {
	self := NewLoop(name, period, body, log)
	if !self.Start(a) {
		return nil
	}
	return self
}

func (self *Loop) Start(a *alive.Alive) bool {
	if !a.Add(1) {
		self.log.Debugf("pump %s not started, stopping", self.Name)
		return false
	}
	go func() {
		defer a.Done()
		self.Run(a.StopChan())
	}()
	return true
}

// Run blocks until stop is closed.
func (self *Loop) Run(stop <-chan struct{}) {
	self.log.Debugf("pump %s start period=%v", self.Name, self.Period)
	defer self.log.Debugf("pump %s stop", self.Name)
	next := self.now()
	for {
		select {
		case <-stop:
			return
		default:
		}

		self.lastWake.Store(self.now().UnixNano())
		self.Body()
		self.runs.Inc()

		next = next.Add(self.Period)
		now := self.now()
		wait := next.Sub(now)
		if wait <= 0 {
			n := self.overruns.Inc()
			self.log.Debugf("pump %s overrun by=%v total=%d", self.Name, -wait, n)
			next = now
			continue
		}
		if !self.sleep(stop, wait) {
			return
		}
	}
}

func (self *Loop) Stat() Stat {
	s := Stat{Runs: self.runs.Load(), Overruns: self.overruns.Load()}
	if ns := self.lastWake.Load(); ns != 0 {
		s.LastWake = time.Unix(0, ns)
	}
	return s
}

func (self *Loop) now() time.Time {
	if self.XXX_now != nil {
		return self.XXX_now()
	}
	return time.Now()
}

// sleep returns false when stopped.
func (self *Loop) sleep(stop <-chan struct{}, d time.Duration) bool {
	if self.XXX_sleep != nil {
		return self.XXX_sleep(stop, d)
	}
	t := time.NewTimer(d)
	select {
	case <-t.C:
		return true
	case <-stop:
		t.Stop()
		return false
	}
}
