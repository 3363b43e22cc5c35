package state

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/touchpanel/helpers"
	"github.com/temoto/touchpanel/internal/pump"
	"github.com/temoto/touchpanel/internal/queue"
	"github.com/temoto/touchpanel/internal/types"
	"github.com/temoto/touchpanel/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Hardware     hardware // hardware.go
	Log          *log2.Log
	// LogRing receives copy of Log output for on-screen log, may be nil.
	LogRing *log2.Ring
	Queue   *queue.Queue
	Pumps   *pump.Pumps

	_copy_guard sync.Mutex //nolint:unused
}

const ContextKey = "run/state-global"

const StopTimeout = 5 * time.Second

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	g.Log.Infof("build version=%s", g.BuildVersion)
	if g.BuildVersion == "unknown" {
		g.Error(fmt.Errorf("build version is not set, please use script/build"))
	}
	if g.Config.UI.Info.Version == "" {
		g.Config.UI.Info.Version = g.BuildVersion
	}

	if g.Config.Log.Debug {
		g.Log.SetLevel(log2.LDebug)
	}
	errs := g.Config.applyDefaults(g.Log)
	if g.LogRing != nil {
		g.LogRing.Resize(g.Config.UI.Log.Lines)
	}

	var err error
	if g.Queue, err = queue.New(g.Config.Touch.QueueSize); err != nil {
		errs = append(errs, errors.Annotate(err, "event queue"))
	}
	if _, err = g.Display(); err != nil {
		errs = append(errs, err)
	}
	if _, err = g.Calibration(); err != nil {
		errs = append(errs, err)
	}
	return helpers.FoldErrors(errs)
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Fatal(err)
	}
}

// Run opens touch hardware, shows initial screen and starts pumps.
// Returns immediately, pumps stop with g.Alive.
func (g *Global) Run(ctx context.Context) error {
	sampler, err := g.Sampler()
	if err != nil {
		return errors.Annotate(err, "run")
	}
	m, err := g.UI()
	if err != nil {
		return errors.Annotate(err, "run")
	}
	if err = m.Init(ctx); err != nil {
		return errors.Annotate(err, "run")
	}
	if name := g.Config.UI.InitialScreen; name != "" {
		id, ok := types.ParseScreenID(name)
		if !ok {
			return errors.NotValidf("config: ui.initial_screen=%s", name)
		}
		if id != types.ScreenHome && !m.TransitionTo(id, types.TransitionNone) {
			return errors.Annotatef(m.LastReject(), "config: ui.initial_screen=%s", name)
		}
	}

	pc := pump.Config{
		TouchPeriod:   helpers.IntMillisecondDefault(g.Config.Touch.PeriodMs, pump.DefaultTouchPeriod),
		DisplayPeriod: helpers.IntMillisecondDefault(g.Config.UI.PeriodMs, pump.DefaultDisplayPeriod),
	}
	g.Pumps, err = pump.Run(g.Alive, pc, sampler, m, g.Queue, g.Log)
	return errors.Annotate(err, "run")
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(err)
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(StopTimeout)
		g.Log.Fatal(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

// StopWait stops pumps, waits for them, then releases hardware.
func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	ok := true
	select {
	case <-g.Alive.WaitChan():
	case <-time.After(timeout):
		ok = false
	}
	if err := g.closeHardware(); err != nil {
		g.Log.Error(errors.Annotate(err, "hardware close"))
	}
	return ok
}
