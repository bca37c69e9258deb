package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DukeMobileTech/basis-data-export/internal/cli"
	"github.com/DukeMobileTech/basis-data-export/internal/config"
	"github.com/DukeMobileTech/basis-data-export/internal/logging"
	"github.com/DukeMobileTech/basis-data-export/internal/reporting"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	log := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error(ctx, "loading configuration failed", "error", err)
		return err
	}

	if err := reporting.Init(ctx, reporting.Settings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     version,
	}, log); err != nil {
		log.Warn(ctx, "error reporting unavailable", "error", err)
	}
	defer reporting.Flush(2 * time.Second)

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "initialization failed", "error", err)
		return err
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Error(ctx, "run failed", "error", err)
		return err
	}
	return nil
}
