package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/logging"
	"github.com/stut/displayproxy/internal/notify"
	"github.com/stut/displayproxy/internal/server"
	"github.com/stut/displayproxy/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run stays on the main goroutine: the window backend must own it.
func run(args []string) int {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	flags, err := config.ParseFlags(args, settings, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if flags.ShowVersion {
		info := version.Get()
		fmt.Printf("%s %s (commit %s, built %s, %s)\n", info.Product, info.Version, info.Commit, info.BuildTime, info.GoVersion)
		return 0
	}

	logging.InitLogger(flags.LogLevel, flags.LogFormat)
	log := logging.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// presses go to stdout as JSON lines, so nothing else is logged on success
	if flags.Watch != "" {
		if err := notify.Watch(ctx, flags.Watch, os.Stdout); err != nil {
			log.Error("Watch failed", "error", err)
			return 1
		}
		return 0
	}

	log.Info("Starting", "version", version.Get().Version, "display", flags.DisplayType)
	err = server.Run(ctx, server.Options{
		DisplayType: flags.DisplayType,
		Buttons:     flags.Buttons,
		Options:     flags.Options,
		Host:        flags.Host,
		Port:        flags.Port,
		Backends:    backends,
	})
	if err != nil {
		log.Error("Display proxy failed", "error", err)
		return 1
	}
	return 0
}
