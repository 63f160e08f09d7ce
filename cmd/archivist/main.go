package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/semmidev/archivist/internal/app"
	"github.com/semmidev/archivist/internal/config"
	"github.com/spf13/pflag"
)

const usage = "Usage: archivist [source] destination [--restore ARCHIVE] [--email ADDRESS] [--config FILE] [--verbose]\n"

// errReported marks a failure whose message the app already printed.
var errReported = errors.New("operation failed")

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Print(usage + config.Flags("archivist").FlagUsages())
		return nil
	}
	if err != nil {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if outcome := application.Run(ctx); outcome.Failed() {
		return errReported
	}
	return nil
}
