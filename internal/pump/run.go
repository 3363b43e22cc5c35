package pump

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/touchpanel/internal/ui"
	"github.com/temoto/touchpanel/log2"
)

type Config struct {
	TouchPeriod   time.Duration
	DisplayPeriod time.Duration
}

// Sampler is producer side, touch.Sampler in production.
type Sampler interface{ Sample() }

// Consumer is display side, ui.Manager in production.
type Consumer interface {
	Drain(ui.Receiver) int
	Update()
}

type Pumps struct {
	Touch   *Loop
	Display *Loop
}

// Run starts touch and display loops. Both stop with a.
// Sampler is only called from touch loop, consumer only from display loop.
func Run(a *alive.Alive, c Config, sampler Sampler, consumer Consumer, q ui.Receiver, log *log2.Log) (*Pumps, error) {
	if c.TouchPeriod <= 0 {
		c.TouchPeriod = DefaultTouchPeriod
	}
	if c.DisplayPeriod <= 0 {
		c.DisplayPeriod = DefaultDisplayPeriod
	}
	p := &Pumps{
		Touch: NewLoop("touch", c.TouchPeriod, sampler.Sample, log),
		Display: NewLoop("display", c.DisplayPeriod, func() {
			consumer.Drain(q)
			consumer.Update()
		}, log),
	}
	if !p.Touch.Start(a) {
		return nil, errors.Errorf("pump touch not started, alive=%s", a.String())
	}
	if !p.Display.Start(a) {
		a.Stop()
		return nil, errors.Errorf("pump display not started, alive=%s", a.String())
	}
	return p, nil
}
