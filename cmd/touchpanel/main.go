package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/temoto/touchpanel/cmd/touchpanel/console"
	"github.com/temoto/touchpanel/cmd/touchpanel/panel"
	"github.com/temoto/touchpanel/cmd/touchpanel/subcmd"
	"github.com/temoto/touchpanel/internal/state"
	state_new "github.com/temoto/touchpanel/internal/state/new"
	"github.com/temoto/touchpanel/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X

var modules = []subcmd.Mod{
	panel.Mod,
	console.Mod,
}

func main() {
	flags := flag.NewFlagSet("touchpanel", flag.ExitOnError)
	configPath := flags.String("config", "touchpanel.hcl", "")
	debug := flags.Bool("debug", false, "log debug messages")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s [option...] [command]\n\nOptions:\n", os.Args[0])
		flags.PrintDefaults()
		fmt.Fprintf(flags.Output(), "\nCommands:\n")
		for _, m := range modules {
			fmt.Fprintf(flags.Output(), "  %-10s %s\n", m.Name, m.Usage)
		}
	}
	_ = flags.Parse(os.Args[1:])

	level := log2.LInfo
	if *debug {
		level = log2.LDebug
	}
	ring := log2.NewRing(state.DefaultLogLines)
	log := log2.NewWriter(io.MultiWriter(os.Stderr, ring), level)
	if subcmd.SdNotify("start") {
		// we're under systemd, assume systemd journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else if isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetFlags(log2.LInteractiveFlags)
	}

	cmdName := flags.Arg(0)
	if cmdName == "" {
		cmdName = panel.Mod.Name
	}
	mod, err := subcmd.Parse(cmdName, modules)
	if err != nil {
		flags.Usage()
		log.Fatal(err)
	}

	ctx, g := state_new.NewContext(log, ring)
	g.BuildVersion = BuildVersion

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		g.Log.Infof("signal=%v stopping", s)
		g.Stop()
	}()

	config := state.MustReadConfig(log, state.NewOsFullReader(), *configPath)
	log.Debugf("config=%+v", config)
	if err := mod.Main(ctx, config); err != nil {
		g.Fatal(err)
	}
	g.StopWait(state.StopTimeout)
}
