// Developer console: scripted touches into running panel, no touch hardware needed.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/touchpanel/cmd/touchpanel/subcmd"
	"github.com/temoto/touchpanel/hardware/touchscreen"
	"github.com/temoto/touchpanel/helpers/cli"
	"github.com/temoto/touchpanel/internal/state"
	"github.com/temoto/touchpanel/internal/types"
)

const usage = `commands:
- tap X Y                       press and release at screen point
- swipe X1 Y1 X2 Y2 [STEPS]     drag in STEPS polls (default 5) then release
- go SCREEN [TRANSITION]        request screen change, e.g. go Settings Fade
- stat                          queue, sampler and pump counters
- calibration                   print current calibration config block
- help
`

var Mod = subcmd.Mod{Name: "console", Usage: "interactive mock touch input", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	config.Hardware.Touch.Driver = touchscreen.DriverMock
	g.MustInit(ctx, config)

	if err := g.Run(ctx); err != nil {
		return errors.Annotate(err, "console")
	}
	g.Log.Debugf("console init complete")

	cli.MainLoop("touchpanel-console", newExecutor(ctx), newCompleter())
	g.StopWait(state.StopTimeout)
	return nil
}

func newCompleter() func(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "tap", Description: "tap X Y"},
		{Text: "swipe", Description: "swipe X1 Y1 X2 Y2 [STEPS]"},
		{Text: "go", Description: "go SCREEN [TRANSITION]"},
		{Text: "stat"},
		{Text: "calibration"},
		{Text: "help"},
	}
	for id := types.ScreenID(0); id < types.ScreenCount; id++ {
		suggests = append(suggests, prompt.Suggest{Text: id.String(), Description: "screen"})
	}

	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}

func newExecutor(ctx context.Context) func(string) {
	g := state.GetGlobal(ctx)

	return func(line string) {
		out, err := Exec(ctx, line)
		if err != nil {
			g.Log.Errorf(errors.ErrorStack(err))
			return
		}
		if out != "" {
			fmt.Print(out)
		}
	}
}

// Exec runs one console line, returns text to print.
func Exec(ctx context.Context, line string) (string, error) {
	g := state.GetGlobal(ctx)
	words := strings.Fields(line)
	if len(words) == 0 {
		return "", nil
	}
	args := words[1:]
	switch words[0] {
	case "help", "?":
		return usage, nil

	case "tap":
		xs, err := parseInts(args, 2, 2)
		if err != nil {
			return "", errors.Annotate(err, "tap")
		}
		mock, err := touchMock(g)
		if err != nil {
			return "", err
		}
		mock.Tap(xs[0], xs[1])
		return "", nil

	case "swipe":
		xs, err := parseInts(args, 4, 5)
		if err != nil {
			return "", errors.Annotate(err, "swipe")
		}
		steps := 5
		if len(xs) == 5 {
			steps = xs[4]
		}
		mock, err := touchMock(g)
		if err != nil {
			return "", err
		}
		mock.Swipe(xs[0], xs[1], xs[2], xs[3], steps)
		return "", nil

	case "go":
		if len(args) < 1 || len(args) > 2 {
			return "", errors.NotValidf("go expected SCREEN [TRANSITION]")
		}
		id, ok := types.ParseScreenID(args[0])
		if !ok {
			return "", errors.NotFoundf("screen=%s", args[0])
		}
		kind := types.TransitionNone
		if len(args) == 2 {
			if kind, ok = types.ParseTransitionKind(args[1]); !ok {
				return "", errors.NotFoundf("transition=%s", args[1])
			}
		}
		if !g.Queue.TrySend(types.NewScreenChange(id, kind)) {
			return "", errors.Errorf("event queue full")
		}
		return "", nil

	case "stat":
		return stat(g), nil

	case "calibration":
		c, err := g.Calibration()
		if err != nil {
			return "", err
		}
		return c.HCL(), nil
	}
	return "", errors.NotSupportedf("command=%s, try help", words[0])
}

func touchMock(g *state.Global) (*touchscreen.Mock, error) {
	if m := g.TouchMock(); m != nil {
		return m, nil
	}
	return nil, errors.Errorf("touch driver=%s is not mock", g.Config.Hardware.Touch.Driver)
}

func parseInts(args []string, min, max int) ([]int, error) {
	if len(args) < min || len(args) > max {
		return nil, errors.NotValidf("argument count=%d", len(args))
	}
	xs := make([]int, len(args))
	for i, s := range args {
		x, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Annotatef(err, "argument %d", i+1)
		}
		xs[i] = x
	}
	return xs, nil
}

func stat(g *state.Global) string {
	b := strings.Builder{}
	qs := g.Queue.Stat()
	fmt.Fprintf(&b, "queue len=%d cap=%d sent=%d received=%d dropped=%d\n",
		g.Queue.Count(), g.Queue.Cap(), qs.Sent, qs.Received, qs.Dropped)
	if s, err := g.Sampler(); err == nil {
		fmt.Fprintf(&b, "sampler %+v\n", s.Stat())
	}
	if p := g.Pumps; p != nil {
		fmt.Fprintf(&b, "pump touch %+v\n", p.Touch.Stat())
		fmt.Fprintf(&b, "pump display %+v\n", p.Display.Stat())
	}
	return b.String()
}
