// Sorry, workaround to import cycles.
package state_new

import (
	"context"
	"os"
	"testing"

	"github.com/temoto/alive/v2"
	"github.com/temoto/touchpanel/internal/state"
	"github.com/temoto/touchpanel/log2"
)

func NewContext(log *log2.Log, ring *log2.Ring) (context.Context, *state.Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}

	g := &state.Global{
		Alive:   alive.NewAlive(),
		Log:     log,
		LogRing: ring,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	return ctx, g
}

// NewTestContext uses mock touch and memory display unless confString says otherwise.
func NewTestContext(t testing.TB, buildVersion string, confString string) (context.Context, *state.Global) {
	fs := state.NewMockFullReader(map[string]string{
		"test-defaults": `hardware { touch { driver = "mock" } }`,
		"test-inline":   confString,
	})

	var log *log2.Log
	if os.Getenv("touchpanel_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, log2.NewRing(state.DefaultLogLines))
	g.BuildVersion = buildVersion
	g.MustInit(ctx, state.MustReadConfig(log, fs, "test-defaults", "test-inline"))
	t.Cleanup(g.Stop)

	return ctx, g
}
