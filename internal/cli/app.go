// Package cli wires the exporter together and drives one invocation: flag
// or prompt handling, the three domain pipelines, and the side concerns
// (run catalog, S3 archive, error reporting).
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/DukeMobileTech/basis-data-export/internal/accounts"
	"github.com/DukeMobileTech/basis-data-export/internal/archive"
	"github.com/DukeMobileTech/basis-data-export/internal/basis"
	"github.com/DukeMobileTech/basis-data-export/internal/catalog"
	"github.com/DukeMobileTech/basis-data-export/internal/config"
	"github.com/DukeMobileTech/basis-data-export/internal/dates"
	"github.com/DukeMobileTech/basis-data-export/internal/export"
	"github.com/DukeMobileTech/basis-data-export/internal/filex"
	"github.com/DukeMobileTech/basis-data-export/internal/logging"
	"github.com/DukeMobileTech/basis-data-export/internal/reporting"
)

type App struct {
	cfg      *config.Config
	log      logging.Logger
	client   *basis.Client
	resolver *dates.Resolver
	loc      *time.Location
	catalog  *catalog.Catalog
	uploader *archive.Uploader
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp builds the App from configuration: the API client, the date
// resolver in the configured zone, the run catalog, and the S3 uploader when
// a bucket is configured.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	cat, err := catalog.Open(ctx, cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	var uploader *archive.Uploader
	if cfg.S3Bucket != "" {
		uploader, err = archive.NewUploader(ctx, archive.Settings{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			cat.Close()
			return nil, err
		}
	}

	return &App{
		cfg:      cfg,
		log:      log,
		client:   basis.NewClient(cfg.BaseURL, cfg.RequestTimeout),
		resolver: dates.NewResolver(loc),
		loc:      loc,
		catalog:  cat,
		uploader: uploader,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Close releases the App's resources.
func (a *App) Close() error {
	return a.catalog.Close()
}

// Run executes one invocation: account management or history when the
// corresponding flag was given, otherwise the three domain exports.
func (a *App) Run(ctx context.Context) error {
	switch {
	case a.cfg.AddAccount:
		return a.addAccount()
	case a.cfg.History > 0:
		return a.printHistory(ctx, a.cfg.History)
	}

	start, end, format := a.cfg.StartDate, a.cfg.EndDate, a.cfg.Format
	if a.cfg.Interactive {
		var err error
		if start, end, format, err = a.promptRun(); err != nil {
			return err
		}
	}

	return a.runExport(ctx, start, end, format)
}

// promptRun asks for the run parameters, offering the default range
// (yesterday through today) and the configured format.
func (a *App) promptRun() (start, end, format string, err error) {
	if start, err = PromptText(a.reader, "Start date", a.resolver.ResolveStart(""), a.out); err != nil {
		return "", "", "", err
	}
	if end, err = PromptText(a.reader, "End date", a.resolver.ResolveEnd(""), a.out); err != nil {
		return "", "", "", err
	}
	if format, err = PromptText(a.reader, "Format (csv or json)", a.cfg.DefaultFormat, a.out); err != nil {
		return "", "", "", err
	}
	return start, end, format, nil
}

// runExport runs the metrics, sleep and activities pipelines in turn. The
// domains are independent: a failure in one is reported and the next still
// runs. Within a domain the per-account abort policy of the Pipeline
// applies.
func (a *App) runExport(ctx context.Context, start, end, format string) error {
	directory, err := accounts.Load(a.cfg.AccountsFile, a.cfg.StudyIDsFile)
	if err != nil {
		return err
	}
	if len(directory.Accounts()) == 0 {
		return fmt.Errorf("no accounts in %s, add one with -add-account", a.cfg.AccountsFile)
	}

	exportDir, err := filex.EnsureDir(a.cfg.ExportDir)
	if err != nil {
		return err
	}

	p := export.New(a.client, directory, a.resolver, a.loc, exportDir, a.log, a.catalog)

	domains := []struct {
		name string
		run  func(ctx context.Context, start, end, format string) (string, error)
	}{
		{export.DomainMetrics, p.ExportMetrics},
		{export.DomainSleep, p.ExportSleep},
		{export.DomainActivities, p.ExportActivities},
	}

	var errs []error
	for _, d := range domains {
		file, err := d.run(ctx, start, end, format)
		if err != nil {
			a.log.Error(ctx, "export failed", "domain", d.name, "error", err)
			reporting.CaptureError(err, d.name)
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		a.log.Info(ctx, "export finished", "domain", d.name, "file", file)
		a.archiveFile(ctx, d.name, file)
	}

	if a.cfg.CatalogKeep > 0 {
		if err := a.catalog.Prune(ctx, a.cfg.CatalogKeep); err != nil {
			a.log.Warn(ctx, "pruning run catalog failed", "error", err)
		}
	}

	return errors.Join(errs...)
}

// archiveFile uploads one finished export when archiving is configured.
// Upload failures are reported but never fail the run; the file is still on
// disk.
func (a *App) archiveFile(ctx context.Context, domain, file string) {
	if a.uploader == nil {
		return
	}
	key, err := a.uploader.UploadFile(ctx, uuid.NewString(), file)
	if err != nil {
		a.log.Error(ctx, "archiving export failed", "domain", domain, "error", err)
		reporting.CaptureError(err, domain)
		return
	}
	a.log.Info(ctx, "export archived", "domain", domain, "key", key)
}

// addAccount prompts for a new account and appends it to the stores.
func (a *App) addAccount() error {
	username, err := PromptText(a.reader, "Username", "", a.out)
	if err != nil {
		return err
	}
	if username == "" {
		return errors.New("username is required")
	}

	password, err := PromptPassword("Password", a.out)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password is required")
	}

	studyID, err := PromptText(a.reader, "Study id (optional)", "", a.out)
	if err != nil {
		return err
	}

	if err := accounts.Append(a.cfg.AccountsFile, username, password); err != nil {
		return err
	}
	if studyID != "" {
		if err := accounts.AppendStudyID(a.cfg.StudyIDsFile, username, studyID); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "Account %s added\n", username)
	return nil
}

// printHistory lists the most recent runs from the catalog.
func (a *App) printHistory(ctx context.Context, limit int) error {
	runs, err := a.catalog.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.out, "no export runs recorded")
		return nil
	}

	for _, r := range runs {
		line := fmt.Sprintf("%s  %-10s  %s..%s  %-4s  rows=%-6d  %s",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Domain, r.StartDate, r.EndDate, r.Format, r.Rows, r.Status)
		if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}
