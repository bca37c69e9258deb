// Package catalog keeps the local history of export runs in an SQLite
// database. Every pipeline invocation leaves one row behind, so it is
// possible to tell after the fact which ranges were exported, when, and
// whether they finished cleanly.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/DukeMobileTech/basis-data-export/internal/catalog/migrations"
	"github.com/DukeMobileTech/basis-data-export/internal/dbx"
	"github.com/DukeMobileTech/basis-data-export/internal/export"
)

// timeLayout is the storage format for run timestamps. Stored as text so the
// rows stay readable with any sqlite shell.
const timeLayout = time.RFC3339Nano

// Catalog is the run-history store. It satisfies export.Recorder.
type Catalog struct {
	db *sql.DB
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the catalog database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate catalog db: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts one finished run.
func (c *Catalog) Record(ctx context.Context, r export.RunRecord) error {
	query := `INSERT INTO export_runs
			(id, domain, start_date, end_date, format, file, row_count, status, error, started_at, finished_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
		r.ID, r.Domain, r.StartDate, r.EndDate, r.Format, r.File,
		r.Rows, r.Status, r.Error,
		r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Recent lists the most recent runs, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]export.RunRecord, error) {
	query := `select id, domain, start_date, end_date, format, file, row_count, status, error, started_at, finished_at
			from export_runs order by started_at desc limit ?`
	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select runs: %w", err)
	}
	defer rows.Close()

	var result []export.RunRecord
	for rows.Next() {
		var item export.RunRecord
		var startedAt, finishedAt string
		if err := rows.Scan(&item.ID, &item.Domain, &item.StartDate, &item.EndDate,
			&item.Format, &item.File, &item.Rows, &item.Status, &item.Error,
			&startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if item.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("bad started_at for run %s: %w", item.ID, err)
		}
		if item.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
			return nil, fmt.Errorf("bad finished_at for run %s: %w", item.ID, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Prune deletes all but the newest keep runs. Selection and deletion run in
// one transaction so a concurrent Record cannot land between them.
func (c *Catalog) Prune(ctx context.Context, keep int) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `delete from export_runs where id not in
				(select id from export_runs order by started_at desc limit ?)`
		if _, err := tx.ExecContext(ctx, query, keep); err != nil {
			return fmt.Errorf("failed to prune runs: %w", err)
		}
		return nil
	})
}
