package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/DukeMobileTech/basis-data-export/internal/accounts"
	"github.com/DukeMobileTech/basis-data-export/internal/basis"
	"github.com/DukeMobileTech/basis-data-export/internal/common"
	"github.com/DukeMobileTech/basis-data-export/internal/dates"
	"github.com/DukeMobileTech/basis-data-export/internal/logging"
)

// Export domains.
const (
	DomainMetrics    = "metrics"
	DomainSleep      = "sleep"
	DomainActivities = "activities"
)

// Run statuses recorded in the catalog.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunRecord describes one finished pipeline invocation for bookkeeping.
// Rows counts delimited data rows; raw-JSON runs report zero.
type RunRecord struct {
	ID         string
	Domain     string
	StartDate  string
	EndDate    string
	Format     string
	File       string
	Rows       int
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder persists RunRecords. Recording is bookkeeping only: a Recorder
// error is logged and never fails the export.
type Recorder interface {
	Record(ctx context.Context, r RunRecord) error
}

// Pipeline runs the per-domain exports for every account in the directory,
// one account at a time, one domain per call.
type Pipeline struct {
	client    *basis.Client
	directory *accounts.Directory
	resolver  *dates.Resolver
	loc       *time.Location
	exportDir string
	log       logging.Logger
	recorder  Recorder
}

// New assembles a Pipeline. recorder may be nil to disable run bookkeeping.
func New(client *basis.Client, directory *accounts.Directory, resolver *dates.Resolver,
	loc *time.Location, exportDir string, log logging.Logger, recorder Recorder) *Pipeline {
	return &Pipeline{
		client:    client,
		directory: directory,
		resolver:  resolver,
		loc:       loc,
		exportDir: exportDir,
		log:       log,
		recorder:  recorder,
	}
}

// resolveRange normalizes and validates the inputs shared by every domain.
// It runs before any network activity.
func (p *Pipeline) resolveRange(startIn, endIn, format string) (string, string, error) {
	start := p.resolver.ResolveStart(startIn)
	if !p.resolver.IsValid(start) {
		return "", "", fmt.Errorf("%w: %s", common.ErrorInvalidDate, start)
	}

	end := p.resolver.ResolveEnd(endIn)
	if !p.resolver.IsValid(end) {
		return "", "", fmt.Errorf("%w: %s", common.ErrorInvalidDate, end)
	}

	if !common.ValidFormat(format) {
		return "", "", fmt.Errorf("%w: %s", common.ErrorUnsupportedFormat, format)
	}
	return start, end, nil
}

func (p *Pipeline) outputFile(start, end, domain, format string) string {
	return filepath.Join(p.exportDir, fmt.Sprintf("basis-data-%s-%s-%s.%s", start, end, domain, format))
}

func (p *Pipeline) record(ctx context.Context, rec RunRecord) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, rec); err != nil {
		p.log.Warn(ctx, "recording export run failed", "domain", rec.Domain, "error", err)
	}
}

// ExportMetrics exports the biometric series for the whole range with one
// API call per account. It returns the output file path.
//
// Failure policy: a login or fetch failure for any account aborts the
// remaining accounts of this run. That all-or-nothing batch semantics is
// deliberate; do not soften it into per-account isolation without a product
// decision.
func (p *Pipeline) ExportMetrics(ctx context.Context, startIn, endIn, format string) (string, error) {
	start, end, err := p.resolveRange(startIn, endIn, format)
	if err != nil {
		return "", err
	}

	startedAt := time.Now()
	runID := uuid.NewString()
	file := p.outputFile(start, end, DomainMetrics, format)
	rows := 0

	finish := func(err error) error {
		rec := RunRecord{
			ID: runID, Domain: DomainMetrics,
			StartDate: start, EndDate: end, Format: format, File: file,
			Rows: rows, Status: StatusOK,
			StartedAt: startedAt, FinishedAt: time.Now(),
		}
		if err != nil {
			rec.Status = StatusFailed
			rec.Error = err.Error()
		}
		p.record(ctx, rec)
		return err
	}

	rangeStart, err := p.resolver.StartOfDay(start)
	if err != nil {
		return file, finish(err)
	}
	bound, err := p.resolver.EndOfDayBound(end)
	if err != nil {
		return file, finish(err)
	}

	var sink *CSVSink
	if format == common.FormatCSV {
		if sink, err = NewCSVSink(file, MetricsHeader); err != nil {
			return file, finish(err)
		}
	}

	// abort flushes what was already written, then reports the failure.
	abort := func(username string, err error) error {
		if sink != nil {
			_ = sink.Close()
		}
		return finish(fmt.Errorf("account %s: %w", username, err))
	}

	for _, acct := range p.directory.Accounts() {
		p.log.Info(ctx, "exporting metrics", "run_id", runID, "user", acct.Username, "start", start, "end", end)

		sess, err := p.client.Login(ctx, acct.Username, acct.Password)
		if err != nil {
			return file, abort(acct.Username, err)
		}

		resp, raw, err := p.client.Metrics(ctx, sess, rangeStart, bound)
		if err != nil {
			return file, abort(acct.Username, err)
		}

		if format == common.FormatCSV {
			for _, row := range FlattenMetrics(acct.Username, p.directory.StudyID(acct.Username), resp, p.loc) {
				if err := sink.Append(row); err != nil {
					return file, abort(acct.Username, err)
				}
				rows++
			}
		} else {
			if err := WriteRaw(file, raw); err != nil {
				return file, abort(acct.Username, err)
			}
		}
	}

	if sink != nil {
		if err := sink.Close(); err != nil {
			return file, finish(err)
		}
	}
	return file, finish(nil)
}

// dayFetch retrieves one calendar day of activities for a session.
type dayFetch func(ctx context.Context, sess *basis.Session, day string) (*basis.ActivitiesResponse, []byte, error)

// rowFlatten maps one activity to its fixed-width row.
type rowFlatten func(username, studyID string, act basis.Activity, loc *time.Location) []string

// ExportSleep exports sleep segments day by day. See ExportMetrics for the
// failure policy; it applies here unchanged.
func (p *Pipeline) ExportSleep(ctx context.Context, startIn, endIn, format string) (string, error) {
	return p.exportDaily(ctx, startIn, endIn, format, DomainSleep, SleepHeader, p.client.SleepDay, FlattenSleep)
}

// ExportActivities exports run/walk/bike records day by day.
func (p *Pipeline) ExportActivities(ctx context.Context, startIn, endIn, format string) (string, error) {
	return p.exportDaily(ctx, startIn, endIn, format, DomainActivities, ActivitiesHeader, p.client.WorkoutDay, FlattenActivity)
}

func (p *Pipeline) exportDaily(ctx context.Context, startIn, endIn, format, domain string,
	header []string, fetch dayFetch, flatten rowFlatten) (string, error) {

	start, end, err := p.resolveRange(startIn, endIn, format)
	if err != nil {
		return "", err
	}

	startedAt := time.Now()
	runID := uuid.NewString()
	file := p.outputFile(start, end, domain, format)
	rows := 0

	finish := func(err error) error {
		rec := RunRecord{
			ID: runID, Domain: domain,
			StartDate: start, EndDate: end, Format: format, File: file,
			Rows: rows, Status: StatusOK,
			StartedAt: startedAt, FinishedAt: time.Now(),
		}
		if err != nil {
			rec.Status = StatusFailed
			rec.Error = err.Error()
		}
		p.record(ctx, rec)
		return err
	}

	days, err := p.resolver.DaysInRange(start, end)
	if err != nil {
		return file, finish(err)
	}

	var sink *CSVSink
	if format == common.FormatCSV {
		if sink, err = NewCSVSink(file, header); err != nil {
			return file, finish(err)
		}
	}

	abort := func(username string, err error) error {
		if sink != nil {
			_ = sink.Close()
		}
		return finish(fmt.Errorf("account %s: %w", username, err))
	}

	for _, acct := range p.directory.Accounts() {
		p.log.Info(ctx, "exporting "+domain, "run_id", runID, "user", acct.Username, "start", start, "end", end)

		sess, err := p.client.Login(ctx, acct.Username, acct.Password)
		if err != nil {
			return file, abort(acct.Username, err)
		}

		studyID := p.directory.StudyID(acct.Username)
		for _, day := range days {
			resp, raw, err := fetch(ctx, sess, day)
			if err != nil {
				return file, abort(acct.Username, err)
			}

			if format == common.FormatCSV {
				for _, act := range resp.Content.Activities {
					if err := sink.Append(flatten(acct.Username, studyID, act, p.loc)); err != nil {
						return file, abort(acct.Username, err)
					}
					rows++
				}
			} else {
				// Raw mode rewrites the file on every day processed, so a
				// multi-day range keeps only the last day's response body.
				if err := WriteRaw(file, raw); err != nil {
					return file, abort(acct.Username, err)
				}
			}
		}
	}

	if sink != nil {
		if err := sink.Close(); err != nil {
			return file, finish(err)
		}
	}
	return file, finish(nil)
}
