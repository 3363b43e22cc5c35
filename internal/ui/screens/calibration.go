package screens

import (
	"fmt"
	"image"

	"github.com/juju/errors"
	"github.com/temoto/touchpanel/internal/touch"
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	"github.com/temoto/touchpanel/internal/ui/widget"
)

const (
	DefaultCalibrationMargin = 20
	calibrationTargets       = 4
	targetRadius             = 6
	targetArm                = 12
)

// Calibration walks user through four corner targets and fits raw readings.
// While running it refuses navigation, only own Cancel leaves early.
type Calibration struct {
	base
	onDone func(touch.Calibration)
	margin int

	targets [calibrationTargets]image.Point
	points  [calibrationTargets]touch.CalPoint
	step    int
	running bool
	failed  error
	result  touch.Calibration
	done    bool
	// finished but Settings request did not go through, next release retries
	leaving  bool
	sampling bool
	sumX     int
	sumY     int
	count    int
}

func NewCalibration(m *ui.Manager, deps Deps) *Calibration {
	self := &Calibration{
		base:   newBase(m, types.ScreenCalibration, "Calibration"),
		onDone: deps.OnCalibrated,
		margin: DefaultCalibrationMargin,
	}
	if deps.Config != nil && deps.Config.Calibration.Margin > 0 {
		self.margin = deps.Config.Calibration.Margin
	}
	r := m.Display()
	w, h, mg := r.Width(), r.Height(), self.margin
	self.targets = [calibrationTargets]image.Point{
		{X: mg, Y: mg},
		{X: w - 1 - mg, Y: mg},
		{X: w - 1 - mg, Y: h - 1 - mg},
		{X: mg, Y: h - 1 - mg},
	}
	// corners are taken by targets
	cancel := self.add(widget.NewButton(w/2-40, h/2+20, 80, 30, "Cancel", self.cancel))
	cancel.Style = closeStyle()
	return self
}

func (self *Calibration) Init() {
	self.step = 0
	self.running = true
	self.failed = nil
	self.done = false
	self.leaving = false
	self.resetSample()
}

func (self *Calibration) Running() bool { return self.running }

// Result is valid after successful run.
func (self *Calibration) Result() (touch.Calibration, bool) { return self.result, self.done }

func (self *Calibration) CanTransitionTo(types.ScreenID) bool {
	return !self.running
}

func (self *Calibration) Draw() {
	r := self.m.Display()
	r.Clear(widget.Black)
	self.SetNeedsRedraw(false)
	msg := fmt.Sprintf("Touch target %d of %d", self.step+1, calibrationTargets)
	switch {
	case self.leaving:
		msg = "Touch to continue"
	case self.failed != nil:
		msg = "Failed, try again. " + msg
	}
	r.Text((r.Width()-r.TextWidth(msg, 1))/2, r.Height()/2-20, msg, widget.White, 1)
	for i, t := range self.targets {
		c := widget.DarkGrey
		switch {
		case i == self.step:
			c = widget.Red
		case i < self.step:
			c = widget.Green
		}
		r.FillRect(t.X-targetArm, t.Y, 2*targetArm+1, 1, c)
		r.FillRect(t.X, t.Y-targetArm, 1, 2*targetArm+1, c)
		r.FillCircle(t.X, t.Y, targetRadius, c)
	}
	self.drawButtons(r)
}

func (self *Calibration) HandleEvent(e types.Event) {
	if self.leaving {
		if e.Kind == types.EventTouchUp {
			self.leave()
		}
		return
	}
	if !self.running {
		return
	}
	if e.Kind == types.EventTouchDown {
		// contact that starts on Cancel is not a calibration sample
		x, y := int(e.Touch.X), int(e.Touch.Y)
		self.sampling = true
		for _, b := range self.buttons {
			if b.Contains(x, y) {
				self.sampling = false
			}
		}
	}
	self.handleTouch(&e)
	if !self.sampling || !e.IsTouch() {
		return
	}
	switch e.Kind {
	case types.EventTouchDown, types.EventTouchMove:
		self.sumX += int(e.Touch.RawX)
		self.sumY += int(e.Touch.RawY)
		self.count++
	case types.EventTouchUp:
		self.record()
	}
}

func (self *Calibration) record() {
	defer self.resetSample()
	if self.count == 0 {
		return
	}
	t := self.targets[self.step]
	self.points[self.step] = touch.CalPoint{
		ScreenX: t.X,
		ScreenY: t.Y,
		RawX:    self.sumX / self.count,
		RawY:    self.sumY / self.count,
	}
	self.log.Debugf("calibration point %d %+v", self.step, self.points[self.step])
	self.step++
	self.SetNeedsRedraw(true)
	if self.step < calibrationTargets {
		return
	}

	r := self.m.Display()
	c, err := touch.Fit(self.points, r.Width(), r.Height())
	if err != nil {
		self.log.Error(errors.Annotate(err, "calibration"))
		self.failed = err
		self.step = 0
		return
	}
	self.result, self.done = c, true
	self.log.Infof("calibration done, put into hardware.touch config:\n%s", c.HCL())
	if self.onDone != nil {
		self.onDone(c)
	}
	self.leave()
}

func (self *Calibration) cancel() {
	self.log.Infof("calibration cancelled at step=%d", self.step)
	self.leave()
}

// leave stops blocking navigation and asks for Settings.
// Dropped request keeps screen in leaving state so user is never stuck.
func (self *Calibration) leave() {
	self.running = false
	self.resetSample()
	self.leaving = !self.navigate(types.ScreenSettings, types.TransitionFade)
	if self.leaving {
		self.log.Errorf("calibration leave to=Settings failed, touch to retry")
		self.SetNeedsRedraw(true)
	}
}

func (self *Calibration) resetSample() {
	self.sampling = false
	self.sumX, self.sumY, self.count = 0, 0, 0
}
