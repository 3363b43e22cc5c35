// Package screens is the built-in screen set: Home, Menu, Settings and friends.
// All navigation goes through Manager.Request so it is ordered with touch events.
package screens

import (
	"time"

	"github.com/temoto/touchpanel/internal/touch"
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	ui_config "github.com/temoto/touchpanel/internal/ui/config"
	"github.com/temoto/touchpanel/internal/ui/widget"
	"github.com/temoto/touchpanel/log2"
)

const (
	titleY      = 20
	headerLineY = 50
)

type Deps struct {
	Config  *ui_config.Config
	LogRing *log2.Ring
	// OnCalibrated receives result of calibration screen. Runs on display goroutine.
	OnCalibrated func(touch.Calibration)
	Now          func() time.Time
}

func RegisterAll(m *ui.Manager, deps Deps) {
	if deps.Config == nil {
		deps.Config = &ui_config.Config{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m.RegisterScreen(types.ScreenHome, NewHome(m))
	m.RegisterScreen(types.ScreenMenu, NewMenu(m))
	m.RegisterScreen(types.ScreenSettings, NewSettings(m, deps.Config))
	m.RegisterScreen(types.ScreenInfo, NewInfo(m, deps.Config, deps.Now))
	m.RegisterScreen(types.ScreenLog, NewLog(m, deps.LogRing))
	m.RegisterScreen(types.ScreenCalibration, NewCalibration(m, deps))
	m.RegisterScreen(types.ScreenInputSettings, NewStub(m, types.ScreenInputSettings, "Input settings"))
	m.RegisterScreen(types.ScreenOutputSettings, NewStub(m, types.ScreenOutputSettings, "Output settings"))
	m.RegisterScreen(types.ScreenStandbySettings, NewStub(m, types.ScreenStandbySettings, "Standby settings"))
	m.RegisterScreen(types.ScreenTimeSettings, NewStub(m, types.ScreenTimeSettings, "Time settings"))
}

// base carries common screen parts: title, buttons, navigation.
type base struct {
	ui.BaseScreen
	id      types.ScreenID
	m       *ui.Manager
	log     *log2.Log
	title   string
	buttons []*widget.Button
	// last release fired a button, gesture from same contact must not navigate again
	clicked bool
}

func newBase(m *ui.Manager, id types.ScreenID, title string) base {
	return base{id: id, m: m, log: m.Log(), title: title}
}

func (self *base) ID() types.ScreenID { return self.id }

func (self *base) NeedsRedraw() bool {
	if self.BaseScreen.NeedsRedraw() {
		return true
	}
	for _, b := range self.buttons {
		if b.NeedsRedraw() {
			return true
		}
	}
	return false
}

func (self *base) OnEnter() {
	self.clicked = false
	self.log.Debugf("screen %s enter", self.id.String())
}
func (self *base) OnExit() { self.log.Debugf("screen %s exit", self.id.String()) }

func (self *base) add(b *widget.Button) *widget.Button {
	self.buttons = append(self.buttons, b)
	return b
}

// handleTouch feeds touch events to buttons, returns true when one fired.
func (self *base) handleTouch(e *types.Event) bool {
	x, y, touching, ok := widget.Touch(e)
	if !ok {
		return false
	}
	if e.Kind == types.EventTouchDown {
		self.clicked = false
	}
	fired := false
	for _, b := range self.buttons {
		if b.HandleTouch(x, y, touching) {
			fired = true
		}
	}
	if !touching {
		self.clicked = fired
	}
	return fired
}

func (self *base) swipeAllowed() bool { return !self.clicked }

// navigate returns false if request was dropped or rejected.
func (self *base) navigate(id types.ScreenID, kind types.TransitionKind) bool {
	self.log.Debugf("screen %s navigate to=%s", self.id.String(), id.String())
	return self.m.Request(id, kind)
}

// drawFrame clears display, draws title, separator and buttons.
func (self *base) drawFrame() ui.Renderer {
	r := self.m.Display()
	r.Clear(widget.Black)
	r.Text(10, titleY, self.title, widget.White, 1)
	r.FillRect(5, headerLineY, r.Width()-10, 2, widget.DarkGrey)
	self.drawButtons(r)
	self.SetNeedsRedraw(false)
	return r
}

func (self *base) drawButtons(r ui.Renderer) {
	for _, b := range self.buttons {
		b.Draw(r)
	}
}

// topRight places standard close/back button.
func topRight(r ui.Renderer, text string, style widget.ButtonStyle, onClick func()) *widget.Button {
	b := widget.NewButton(r.Width()-70, 10, 60, 30, text, onClick)
	b.Style = style
	return b
}

func closeStyle() widget.ButtonStyle {
	st := widget.DefaultButtonStyle()
	st.Normal, st.Pressed = widget.Red, widget.RedDark
	st.Radius = 0
	st.BorderWidth = 2
	st.Border = widget.DarkRed
	return st
}

func backStyle() widget.ButtonStyle {
	st := widget.DefaultButtonStyle()
	st.Normal, st.Pressed = widget.Slate, widget.SlateDark
	st.Radius = 5
	st.ShadowOffset = 2
	return st
}
