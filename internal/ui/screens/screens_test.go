package screens

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/touchpanel/hardware/display"
	"github.com/temoto/touchpanel/internal/queue"
	"github.com/temoto/touchpanel/internal/touch"
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/internal/ui"
	ui_config "github.com/temoto/touchpanel/internal/ui/config"
	"github.com/temoto/touchpanel/internal/ui/widget"
	"github.com/temoto/touchpanel/log2"
)

type tenv struct {
	t    testing.TB
	m    *ui.Manager
	d    *display.Display
	q    *queue.Queue
	ring *log2.Ring
	now  time.Time
	cal  []touch.Calibration
}

func newEnv(t testing.TB) *tenv { return newEnvLog(t, log2.NewTest(t, log2.LDebug)) }

func newEnvLog(t testing.TB, log *log2.Log) *tenv {
	env := &tenv{
		t:    t,
		d:    display.NewMock(image.Pt(320, 240)),
		q:    queue.MustNew(64),
		ring: log2.NewRing(16),
		now:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	env.m = ui.NewManager(env.d, log)
	env.m.SetRequests(env.q)
	config := &ui_config.Config{}
	config.Info.Product = "panel"
	config.Info.Version = "1.2.3"
	deps := Deps{
		Config:       config,
		LogRing:      env.ring,
		OnCalibrated: func(c touch.Calibration) { env.cal = append(env.cal, c) },
		Now:          func() time.Time { return env.now },
	}
	env.m.Builtin = func(m *ui.Manager) { RegisterAll(m, deps) }
	require.NoError(t, env.m.Init(context.Background()))
	return env
}

func (env *tenv) send(events ...types.Event) {
	for _, e := range events {
		require.True(env.t, env.q.TrySend(e))
	}
	for env.m.Drain(env.q) > 0 {
	}
}

func (env *tenv) tapRaw(x, y, rawX, rawY int) {
	env.send(
		types.NewTouch(types.EventTouchDown, int32(x), int32(y), int32(rawX), int32(rawY), 0),
		types.NewTouch(types.EventTouchUp, int32(x), int32(y), int32(rawX), int32(rawY), 10),
	)
}

func (env *tenv) tap(x, y int) { env.tapRaw(x, y, x*10, y*10) }

func (env *tenv) tapButton(b *widget.Button) { env.tap(b.X+b.W/2, b.Y+b.H/2) }

func (env *tenv) swipe(dir types.Direction) {
	env.send(types.NewSwipe(dir, 160, 120, 160, 120, 100))
}

func (env *tenv) goTo(id types.ScreenID) {
	require.True(env.t, env.m.TransitionTo(id, types.TransitionNone), "%v", env.m.LastReject())
}

func (env *tenv) screen(id types.ScreenID) ui.Screen {
	s, ok := env.m.Screen(id)
	require.True(env.t, ok)
	return s
}

func (env *tenv) current() types.ScreenID { return env.m.CurrentScreenID() }

func TestRegisterAll(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	for id := types.ScreenID(0); id < types.ScreenCount; id++ {
		s, ok := env.m.Screen(id)
		require.True(t, ok, id.String())
		assert.Equal(t, id, s.ID())
	}
	assert.Equal(t, types.ScreenHome, env.current())
}

func TestHomeSwipe(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	for _, dir := range []types.Direction{types.DirectionDown, types.DirectionLeft, types.DirectionRight} {
		env.swipe(dir)
		assert.Equal(t, types.ScreenHome, env.current(), dir.String())
	}
	env.swipe(types.DirectionUp)
	assert.Equal(t, types.ScreenMenu, env.current())
	assert.Equal(t, []types.TransitionKind{types.TransitionNone, types.TransitionSlideUp}, env.d.Transitions())
}

func TestHomePosition(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	home := env.screen(types.ScreenHome).(*Home)
	_, _, _, _, ok := home.Position()
	assert.False(t, ok)
	env.send(types.NewTouch(types.EventTouchDown, 10, 20, 1000, 2000, 0))
	x, y, rx, ry, ok := home.Position()
	assert.True(t, ok)
	assert.Equal(t, []int32{10, 20, 1000, 2000}, []int32{x, y, rx, ry})
	// raw readout sticks until it moves far enough
	env.send(types.NewTouch(types.EventTouchMove, 11, 21, 1030, 2030, 10))
	x, y, rx, ry, _ = home.Position()
	assert.Equal(t, []int32{11, 21, 1000, 2000}, []int32{x, y, rx, ry})
	env.send(types.NewTouch(types.EventTouchMove, 15, 25, 1100, 2030, 20))
	x, y, rx, ry, _ = home.Position()
	assert.Equal(t, []int32{15, 25, 1100, 2030}, []int32{x, y, rx, ry})
}

func TestMenuSwipeHome(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	for _, dir := range []types.Direction{types.DirectionUp, types.DirectionDown, types.DirectionLeft, types.DirectionRight} {
		env.goTo(types.ScreenMenu)
		env.swipe(dir)
		assert.Equal(t, types.ScreenHome, env.current(), dir.String())
	}
}

func TestMenuButtons(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	menu := env.screen(types.ScreenMenu).(*Menu)
	require.Len(t, menu.buttons, len(menuItems)+1)
	for i, item := range menuItems {
		env.goTo(types.ScreenMenu)
		env.tapButton(menu.buttons[i])
		assert.Equal(t, item.target, env.current(), item.text)
	}
	env.goTo(types.ScreenMenu)
	env.tapButton(menu.buttons[len(menuItems)])
	assert.Equal(t, types.ScreenHome, env.current())
}

func TestMenuLayout(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	menu := env.screen(types.ScreenMenu).(*Menu)
	expect := []widget.Rect{
		{X: 20, Y: 50, W: 130, H: 40}, {X: 170, Y: 50, W: 130, H: 40},
		{X: 20, Y: 102, W: 130, H: 40}, {X: 170, Y: 102, W: 130, H: 40},
		{X: 20, Y: 154, W: 130, H: 40}, {X: 170, Y: 154, W: 130, H: 40},
		{X: 250, Y: 10, W: 60, H: 30},
	}
	for i, b := range menu.buttons {
		assert.Equal(t, expect[i], b.Rect, b.Text)
	}
}

func TestClickThenGesture(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenMenu)
	menu := env.screen(types.ScreenMenu).(*Menu)
	b := menu.buttons[5]
	// horizontal drag inside wide button: click fires, trailing swipe must not go Home
	env.send(
		types.NewTouch(types.EventTouchDown, int32(b.X+5), int32(b.Y+5), 0, 0, 0),
		types.NewTouch(types.EventTouchMove, int32(b.X+b.W-5), int32(b.Y+5), 0, 0, 50),
		types.NewTouch(types.EventTouchUp, int32(b.X+b.W-5), int32(b.Y+5), 0, 0, 60),
		types.NewSwipe(types.DirectionRight, int32(b.X+5), int32(b.Y+5), int32(b.X+b.W-5), int32(b.Y+5), 60),
	)
	assert.Equal(t, types.ScreenSettings, env.current())
}

func TestSettingsBrightness(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenSettings)
	s := env.screen(types.ScreenSettings).(*Settings)
	assert.Equal(t, DefaultBrightness, s.Brightness)
	var seen []int
	for i := 0; i < 5; i++ {
		env.tapButton(s.brightnessBtn)
		seen = append(seen, s.Brightness)
	}
	assert.Equal(t, []int{20, 40, 60, 80, 20}, seen)
	assert.Equal(t, "Brightness: 20%", s.brightnessBtn.Text)
	env.tapButton(s.soundBtn)
	assert.True(t, s.TouchSound)
	assert.Equal(t, "Sound: ON", s.soundBtn.Text)
}

func TestSettingsReset(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenSettings)
	s := env.screen(types.ScreenSettings).(*Settings)
	reset := s.buttons[2]
	require.Equal(t, "Reset", reset.Text)
	env.tapButton(s.soundBtn)
	env.tapButton(s.brightnessBtn)

	env.tapButton(reset)
	require.True(t, s.Dialog().Visible())
	// modal: swipes and other buttons ignored
	env.swipe(types.DirectionUp)
	env.tapButton(s.soundBtn)
	assert.Equal(t, types.ScreenSettings, env.current())
	assert.True(t, s.TouchSound)
	env.tapButton(s.Dialog().NoButton())
	assert.False(t, s.Dialog().Visible())
	assert.True(t, s.TouchSound)
	assert.Equal(t, 20, s.Brightness)

	env.tapButton(reset)
	env.tapButton(s.Dialog().YesButton())
	assert.False(t, s.Dialog().Visible())
	assert.False(t, s.TouchSound)
	assert.Equal(t, DefaultBrightness, s.Brightness)
	assert.Equal(t, types.ScreenSettings, env.current())
}

func TestSettingsNavigation(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenSettings)
	s := env.screen(types.ScreenSettings).(*Settings)
	env.tapButton(s.buttons[4])
	assert.Equal(t, types.ScreenInfo, env.current())
	env.swipe(types.DirectionRight)
	assert.Equal(t, types.ScreenSettings, env.current())
	env.tapButton(s.buttons[5])
	assert.Equal(t, types.ScreenHome, env.current())
	env.goTo(types.ScreenSettings)
	env.swipe(types.DirectionLeft)
	assert.Equal(t, types.ScreenHome, env.current())
}

func TestInfo(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenInfo)
	info := env.screen(types.ScreenInfo).(*Info)
	lines := info.Lines()
	assert.Equal(t, [2]string{"Product", "panel"}, lines[1])
	assert.Equal(t, [2]string{"Board", "-"}, lines[0])
	assert.Equal(t, "panel 1.2.3 - -", info.QRText())
	info.SetNeedsRedraw(false)
	info.Update()
	env.now = env.now.Add(2 * time.Second)
	info.Update()
	env.tapButton(info.buttons[0])
	assert.Equal(t, types.ScreenSettings, env.current())
}

func TestLogScreen(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenLog)
	ls := env.screen(types.ScreenLog).(*Log)
	env.m.Update()
	assert.False(t, ls.NeedsRedraw())
	_, _ = env.ring.Write([]byte("hello\n"))
	ls.Update()
	assert.True(t, ls.NeedsRedraw())
	env.m.Update()
	assert.False(t, ls.NeedsRedraw())
	env.swipe(types.DirectionDown)
	assert.Equal(t, types.ScreenMenu, env.current())
}

func TestClipRunes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input  string
		n      int
		expect string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"привет мир", 6, "привет"},
		{"a€b€c", 2, "a€"},
		{"", 3, ""},
	}
	for _, c := range cases {
		got := clipRunes(c.input, c.n)
		assert.Equal(t, c.expect, got, "input=%q n=%d", c.input, c.n)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestLogScreenMultibyte(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenLog)
	line := "x" + strings.Repeat("é", 200)
	_, _ = env.ring.Write([]byte(line + "\n"))
	ls := env.screen(types.ScreenLog).(*Log)
	ls.Update()
	require.True(t, ls.NeedsRedraw())
	env.m.Update()
	assert.False(t, ls.NeedsRedraw())

	// clipped by characters, so line spans whole width rather than half
	lit := 0
	for y := 58; y < 58+logLineHeight; y++ {
		for x := 240; x < 300; x++ {
			if env.d.Pixel(x, y) != widget.Black {
				lit++
			}
		}
	}
	assert.NotZero(t, lit)
}

func TestStubBack(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	for _, id := range []types.ScreenID{types.ScreenInputSettings, types.ScreenOutputSettings, types.ScreenStandbySettings, types.ScreenTimeSettings} {
		env.goTo(id)
		s := env.screen(id).(*Stub)
		env.tapButton(s.buttons[0])
		assert.Equal(t, types.ScreenMenu, env.current(), id.String())
	}
}

func TestCalibration(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenSettings)
	settings := env.screen(types.ScreenSettings).(*Settings)
	env.tapButton(settings.buttons[3])
	require.Equal(t, types.ScreenCalibration, env.current())
	c := env.screen(types.ScreenCalibration).(*Calibration)
	assert.True(t, c.Running())

	env.m.Request(types.ScreenHome, types.TransitionNone)
	env.send()
	assert.Equal(t, types.ScreenCalibration, env.current())
	assert.True(t, errors.IsForbidden(env.m.LastReject()), errors.ErrorStack(env.m.LastReject()))

	truth := touch.Calibration{RawMinX: 300, RawMaxX: 3800, RawMinY: 400, RawMaxY: 3700, Width: 320, Height: 240, InvertY: true}
	for i, p := range c.targets {
		rx, ry := truth.Unmap(p.X, p.Y)
		env.tapRaw(p.X, p.Y, rx, ry)
		if i < len(c.targets)-1 {
			assert.Equal(t, i+1, c.step)
		}
	}
	assert.False(t, c.Running())
	result, ok := c.Result()
	require.True(t, ok)
	require.Len(t, env.cal, 1)
	assert.Equal(t, result, env.cal[0])
	assert.False(t, result.SwapXY)
	assert.False(t, result.InvertX)
	assert.True(t, result.InvertY)
	assert.InDelta(t, truth.RawMinX, result.RawMinX, 30)
	assert.InDelta(t, truth.RawMaxX, result.RawMaxX, 30)
	assert.InDelta(t, truth.RawMinY, result.RawMinY, 30)
	assert.InDelta(t, truth.RawMaxY, result.RawMaxY, 30)
	assert.Equal(t, types.ScreenSettings, env.current())
}

func TestCalibrationCancel(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenCalibration)
	c := env.screen(types.ScreenCalibration).(*Calibration)
	p := c.targets[0]
	env.tap(p.X, p.Y)
	assert.Equal(t, 1, c.step)
	// contact on Cancel is not taken as sample
	env.tapButton(c.buttons[0])
	assert.Equal(t, 1, c.step)
	assert.False(t, c.Running())
	assert.Equal(t, types.ScreenSettings, env.current())
	_, ok := c.Result()
	assert.False(t, ok)
	assert.Empty(t, env.cal)
}

func TestCalibrationLogsResultOnce(t *testing.T) {
	t.Parallel()
	ring := log2.NewRing(256)
	log := log2.NewWriter(ring, log2.LDebug)
	log.SetFlags(0)
	env := newEnvLog(t, log)
	env.goTo(types.ScreenCalibration)
	c := env.screen(types.ScreenCalibration).(*Calibration)
	truth := touch.Calibration{RawMinX: 300, RawMaxX: 3800, RawMinY: 400, RawMaxY: 3700, Width: 320, Height: 240}
	for _, p := range c.targets {
		rx, ry := truth.Unmap(p.X, p.Y)
		env.tapRaw(p.X, p.Y, rx, ry)
	}
	require.Equal(t, types.ScreenSettings, env.current())
	done := 0
	for _, line := range ring.Lines() {
		if strings.Contains(line, "calibration done") {
			done++
		}
	}
	assert.Equal(t, 1, done)
}

// Cancel whose navigation request was dropped must not leave screen stuck.
func TestCalibrationCancelQueueFull(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenCalibration)
	c := env.screen(types.ScreenCalibration).(*Calibration)
	cancel := c.buttons[0]
	x, y := int32(cancel.X+cancel.W/2), int32(cancel.Y+cancel.H/2)

	idle := types.NewTouch(types.EventTouchMove, 1, 1, 10, 10, 0)
	for env.q.TrySend(idle) {
	}
	c.HandleEvent(types.NewTouch(types.EventTouchDown, x, y, 0, 0, 0))
	c.HandleEvent(types.NewTouch(types.EventTouchUp, x, y, 0, 0, 10))
	assert.False(t, c.Running())
	assert.True(t, c.leaving)
	// one filler overflow plus navigation request
	assert.Equal(t, uint64(2), env.q.Stat().Dropped)

	env.send()
	assert.Equal(t, types.ScreenCalibration, env.current())
	// stale moves are not samples and do not navigate
	assert.Equal(t, 0, c.count)
	assert.True(t, c.leaving)

	env.tapButton(cancel)
	assert.Equal(t, types.ScreenSettings, env.current())
	assert.False(t, c.leaving)
	assert.Empty(t, env.cal)

	// next visit starts fresh
	env.goTo(types.ScreenCalibration)
	assert.True(t, c.Running())
	assert.False(t, c.leaving)
	assert.Equal(t, 0, c.step)
}

func TestCalibrationDegenerate(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	env.goTo(types.ScreenCalibration)
	c := env.screen(types.ScreenCalibration).(*Calibration)
	for _, p := range c.targets {
		env.tapRaw(p.X, p.Y, 2000, 2000)
	}
	assert.True(t, c.Running())
	assert.Equal(t, 0, c.step)
	assert.Error(t, c.failed)
	assert.Equal(t, types.ScreenCalibration, env.current())
}
