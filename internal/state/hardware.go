package state

import (
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/touchpanel/hardware/display"
	"github.com/temoto/touchpanel/hardware/touchscreen"
	"github.com/temoto/touchpanel/helpers"
	"github.com/temoto/touchpanel/internal/touch"
	"github.com/temoto/touchpanel/internal/ui"
	"github.com/temoto/touchpanel/internal/ui/screens"
	"github.com/temoto/touchpanel/log2"
)

type hardware struct {
	Display struct {
		once
		d *display.Display
	}
	Calibration struct {
		once
		c touch.Calibration
	}
	Touch struct {
		once
		hw touch.Hardware
		// Mock is set when driver=mock, dev console scripts contacts through it.
		Mock *touchscreen.Mock
	}
	Sampler struct {
		once
		s *touch.Sampler
	}
	UI struct {
		once
		m *ui.Manager
	}
}

// Display is framebuffer when configured, otherwise memory-only frame.
func (g *Global) Display() (*display.Display, error) {
	x := &g.Hardware.Display // short alias
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Display
		switch {
		case cfg.Framebuffer != "":
			x.d, x.err = display.NewFb(cfg.Framebuffer)
			if x.err == nil && (x.d.Width() != cfg.Width || x.d.Height() != cfg.Height) {
				g.Log.Infof("display framebuffer=%s size=%v overrides config %dx%d",
					cfg.Framebuffer, x.d.Size(), cfg.Width, cfg.Height)
			}
			return x.err

		default:
			g.Log.Debugf("display: no framebuffer, using memory %dx%d", cfg.Width, cfg.Height)
			x.d = display.NewMock(image.Pt(cfg.Width, cfg.Height))
			return nil
		}
	})
	return x.d, x.err
}

// Calibration maps raw controller range onto display size.
func (g *Global) Calibration() (touch.Calibration, error) {
	x := &g.Hardware.Calibration
	_ = x.do(func() error {
		d, err := g.Display()
		if err != nil {
			return errors.Annotate(err, "calibration")
		}
		x.c = g.Config.Hardware.Touch.Calibration.Calibration(d.Width(), d.Height())
		return errors.Annotate(x.c.Validate(), "config: hardware.touch.calibration")
	})
	return x.c, x.err
}

func (g *Global) Touch() (touch.Hardware, error) {
	x := &g.Hardware.Touch
	_ = x.do(func() error {
		cal, err := g.Calibration()
		if err != nil {
			return err
		}
		cfg := &g.Config.Hardware.Touch
		log := g.Log
		if !cfg.LogDebug {
			log = g.Log.Clone(log2.LInfo)
		}
		switch cfg.Driver {
		case touchscreen.DriverEvdev:
			x.hw, x.err = touchscreen.NewEvdev(cfg.Device, cal, log)
		case touchscreen.DriverXPT2046:
			x.hw, x.err = touchscreen.NewXPT2046(&touchscreen.XPT2046Config{
				SpiBus:   cfg.Spi,
				SpiMode:  cfg.SpiMode,
				SpiSpeed: cfg.SpiSpeed,
				IrqChip:  cfg.IrqChip,
				IrqLine:  cfg.IrqLine,
			}, cal, log)
		case touchscreen.DriverMock:
			x.Mock = touchscreen.NewMock(cal)
			x.hw = x.Mock
		default:
			x.err = errors.NotValidf("config: hardware.touch.driver=%s", cfg.Driver)
		}
		if x.err != nil {
			x.hw = nil
		}
		return errors.Annotatef(x.err, "touch driver=%s", cfg.Driver)
	})
	return x.hw, x.err
}

// TouchMock is nil unless driver=mock.
func (g *Global) TouchMock() *touchscreen.Mock {
	if _, err := g.Touch(); err != nil {
		return nil
	}
	return g.Hardware.Touch.Mock
}

// Sampler feeds event queue. Only touch pump may call Sample.
func (g *Global) Sampler() (*touch.Sampler, error) {
	x := &g.Hardware.Sampler
	_ = x.do(func() error {
		hw, err := g.Touch()
		if err != nil {
			return err
		}
		x.s = touch.NewSampler(hw, g.Queue, g.Log)
		x.s.Config.MoveThreshold = g.Config.Touch.MoveThreshold
		x.s.Config.SwipeThreshold = g.Config.Touch.SwipeThreshold
		return nil
	})
	return x.s, x.err
}

// UI is screen manager with built-in screens, owned by display pump after Run.
func (g *Global) UI() (*ui.Manager, error) {
	x := &g.Hardware.UI
	_ = x.do(func() error {
		d, err := g.Display()
		if err != nil {
			return err
		}
		m := ui.NewManager(d, g.Log)
		m.SwipeMaxDuration = time.Duration(g.Config.UI.SwipeMaxMs) * time.Millisecond
		m.SetRequests(g.Queue)
		m.Builtin = func(m *ui.Manager) {
			// calibration screen logs result as config snippet itself
			screens.RegisterAll(m, screens.Deps{
				Config:  &g.Config.UI,
				LogRing: g.LogRing,
			})
		}
		x.m = m
		return nil
	})
	return x.m, x.err
}

func (g *Global) closeHardware() error {
	cs := make([]io.Closer, 0, 2)
	if x := &g.Hardware.Touch; x.done() {
		if c, ok := x.hw.(io.Closer); ok {
			cs = append(cs, c)
		}
	}
	if x := &g.Hardware.Display; x.done() && x.d != nil {
		cs = append(cs, x.d)
	}
	errs := make([]error, 0, len(cs))
	for _, c := range cs {
		errs = append(errs, c.Close())
	}
	return helpers.FoldErrors(errs)
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
