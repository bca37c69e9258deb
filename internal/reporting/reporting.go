// Package reporting sends export failures to Sentry. With an empty DSN it
// stays inert, so local runs never need a Sentry project.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/DukeMobileTech/basis-data-export/internal/logging"
)

// Settings configures the Sentry client.
type Settings struct {
	DSN         string
	Environment string
	Release     string
}

// Init initializes Sentry. An empty DSN disables reporting and is not an
// error.
func Init(ctx context.Context, cfg Settings, log logging.Logger) error {
	if cfg.DSN == "" {
		log.Info(ctx, "error reporting disabled, no DSN configured")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}

	log.Info(ctx, "error reporting initialized", "environment", cfg.Environment)
	return nil
}

// CaptureError reports one failure, tagged with the export domain it came
// from. A nil error is ignored.
func CaptureError(err error, domain string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("domain", domain)
		sentry.CaptureException(err)
	})
}

// Flush blocks until buffered events are sent or the timeout expires. Call
// it before the process exits.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
