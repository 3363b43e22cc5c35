package screens

import (
	"fmt"

	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	ui_config "github.com/temoto/touchpanel/internal/ui/config"
	"github.com/temoto/touchpanel/internal/ui/widget"
)

const (
	DefaultBrightness = 80
	brightnessStep    = 20
)

// Settings holds brightness and touch sound, both in memory only.
type Settings struct {
	base
	Brightness int
	TouchSound bool

	brightnessBtn *widget.Button
	soundBtn      *widget.Button
	dialog        *widget.ConfirmDialog
}

func NewSettings(m *ui.Manager, c *ui_config.Config) *Settings {
	self := &Settings{
		base:       newBase(m, types.ScreenSettings, "Settings"),
		Brightness: c.Settings.Brightness,
		TouchSound: c.Settings.TouchSound,
	}
	if self.Brightness <= 0 || self.Brightness >= 100 || self.Brightness%brightnessStep != 0 {
		self.Brightness = DefaultBrightness
	}
	r := m.Display()
	left, right := 20, r.Width()-150

	self.brightnessBtn = self.add(widget.NewButton(left, 100, 130, 40, "", self.nextBrightness))
	self.brightnessBtn.Style.Radius, self.brightnessBtn.Style.ShadowOffset = 10, 4

	self.soundBtn = self.add(widget.NewButton(right, 100, 130, 40, "", self.toggleSound))
	self.soundBtn.Style.Normal, self.soundBtn.Style.Pressed = widget.Green, widget.GreenDark
	self.soundBtn.Style.Radius, self.soundBtn.Style.ShadowOffset = 10, 4

	reset := self.add(widget.NewButton(left, 150, 130, 35, "Reset", self.confirmReset))
	reset.Style = closeStyle()

	calibrate := self.add(widget.NewButton(right, 150, 130, 35, "Calibrate", func() {
		self.navigate(types.ScreenCalibration, types.TransitionFade)
	}))
	calibrate.Style.Normal, calibrate.Style.Pressed = widget.Orange, widget.OrangeDark

	info := self.add(widget.NewButton(left, 195, 130, 35, "Info", func() {
		self.navigate(types.ScreenInfo, types.TransitionSlideLeft)
	}))
	info.Style = backStyle()

	self.add(topRight(r, "Close", closeStyle(), self.home))

	self.dialog = widget.NewConfirmDialog(r.Width(), r.Height(), "Reset", "Reset settings to default?")
	self.dialog.OnYes = func() {
		self.reset()
		self.SetNeedsRedraw(true)
	}
	self.dialog.OnNo = func() { self.SetNeedsRedraw(true) }
	self.updateText()
	return self
}

func (self *Settings) Dialog() *widget.ConfirmDialog { return self.dialog }

func (self *Settings) Init() {
	self.dialog.Hide()
	self.SetNeedsRedraw(true)
}

func (self *Settings) Draw() {
	r := self.drawFrame()
	r.Text(10, 65, "Swipe any direction to go home", widget.Cyan, 1)
	if self.dialog.Visible() {
		self.dialog.Draw(r)
	}
}

func (self *Settings) NeedsRedraw() bool {
	return self.base.NeedsRedraw() || self.dialog.NeedsRedraw()
}

func (self *Settings) HandleEvent(e types.Event) {
	if self.dialog.Visible() {
		if x, y, touching, ok := widget.Touch(&e); ok {
			if self.dialog.HandleTouch(x, y, touching) || !touching {
				self.clicked = true
			}
		}
		return
	}
	self.handleTouch(&e)
}

func (self *Settings) OnSwipeUp()    { self.swipeHome() }
func (self *Settings) OnSwipeDown()  { self.swipeHome() }
func (self *Settings) OnSwipeLeft()  { self.swipeHome() }
func (self *Settings) OnSwipeRight() { self.swipeHome() }

func (self *Settings) swipeHome() {
	if self.swipeAllowed() && !self.dialog.Visible() {
		self.home()
	}
}

func (self *Settings) home() { self.navigate(types.ScreenHome, types.TransitionSlideDown) }

// 20, 40, 60, 80, 20...
func (self *Settings) nextBrightness() {
	self.Brightness = (self.Brightness + brightnessStep) % 100
	if self.Brightness == 0 {
		self.Brightness = brightnessStep
	}
	self.log.Infof("settings brightness=%d%%", self.Brightness)
	self.updateText()
}

func (self *Settings) toggleSound() {
	self.TouchSound = !self.TouchSound
	self.log.Infof("settings touch_sound=%t", self.TouchSound)
	self.updateText()
}

func (self *Settings) confirmReset() {
	self.dialog.Show()
	self.SetNeedsRedraw(true)
}

func (self *Settings) reset() {
	self.Brightness, self.TouchSound = DefaultBrightness, false
	self.log.Infof("settings reset to default")
	self.updateText()
}

func (self *Settings) updateText() {
	self.brightnessBtn.SetText(fmt.Sprintf("Brightness: %d%%", self.Brightness))
	if self.TouchSound {
		self.soundBtn.SetText("Sound: ON")
	} else {
		self.soundBtn.SetText("Sound: OFF")
	}
}
