// Omnibus tracks historical product prices for an e-commerce catalog and
// maintains the "lowest price prior to sale" marker required by EU price
// transparency rules.
//
// The binary runs the maintenance side: schema migrations on startup and
// the daily retention sweep. Host platforms embed the packages directly
// and supply their own catalog adapter to the dispatcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chocante/omnibus/internal/app"
	"github.com/chocante/omnibus/internal/config"
	"github.com/chocante/omnibus/internal/log"
)

func main() {
	uninstall := flag.Bool("uninstall", false, "remove all omnibus data and exit")
	flag.Parse()

	if err := run(*uninstall); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(uninstall bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Setup(ctx, cfg, nil, nil, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing application", "error", err)
		}
	}()

	if uninstall {
		return a.Uninstall(ctx)
	}

	logger.Info("omnibus started", "retention_days", cfg.RetentionDays)
	a.Run(ctx)
	return nil
}
