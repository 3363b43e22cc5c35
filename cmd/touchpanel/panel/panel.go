// Main, user facing mode of operation.
package panel

import (
	"context"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/touchpanel/cmd/touchpanel/subcmd"
	"github.com/temoto/touchpanel/internal/state"
)

var Mod = subcmd.Mod{Name: "panel", Usage: "run touch and display loops", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)

	if err := g.Run(ctx); err != nil {
		return errors.Annotate(err, "panel")
	}
	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Debugf("panel init complete, touch=%s", g.Config.Hardware.Touch.Driver)

	g.Alive.Wait()
	p := g.Pumps
	g.Log.Infof("panel stopped touch=%+v display=%+v", p.Touch.Stat(), p.Display.Stat())
	return nil
}
