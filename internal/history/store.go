package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump on schema changes; the
// history database is disposable (delete it to reset).
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// CrawlRun is one recorded crawl pass.
type CrawlRun struct {
	ID                int64
	RunID             string
	StartedAt         time.Time
	Duration          time.Duration
	Found             int
	Processed         int
	SkippedDuplicate  int
	SkippedInvalid    int
	SkippedUnreadable int
	Failed            int
}

// IngestCycle is one recorded non-empty ingest sweep.
type IngestCycle struct {
	ID                int64
	OccurredAt        time.Time
	Examined          int
	Added             int
	DuplicateName     int
	RejectedExtension int
	Failed            int
}

// Totals aggregates ingest outcomes over the whole history.
type Totals struct {
	Cycles            int
	Added             int
	DuplicateName     int
	RejectedExtension int
	Failed            int
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordCrawl inserts one crawl pass.
func (s *Store) RecordCrawl(ctx context.Context, run CrawlRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crawl_runs (
            run_id, started_at, duration_ms, found, processed,
            skipped_duplicate, skipped_invalid, skipped_unreadable, failed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Found,
		run.Processed,
		run.SkippedDuplicate,
		run.SkippedInvalid,
		run.SkippedUnreadable,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert crawl run: %w", err)
	}
	return nil
}

// RecordIngestCycle inserts one ingest sweep.
func (s *Store) RecordIngestCycle(ctx context.Context, cycle IngestCycle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_cycles (
            occurred_at, examined, added, duplicate_name, rejected_extension, failed
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		cycle.OccurredAt.UTC().Format(time.RFC3339Nano),
		cycle.Examined,
		cycle.Added,
		cycle.DuplicateName,
		cycle.RejectedExtension,
		cycle.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert ingest cycle: %w", err)
	}
	return nil
}

// RecentCrawls returns the latest crawl passes, newest first.
func (s *Store) RecentCrawls(ctx context.Context, limit int) ([]CrawlRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, started_at, duration_ms, found, processed,
                skipped_duplicate, skipped_invalid, skipped_unreadable, failed
         FROM crawl_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []CrawlRun
	for rows.Next() {
		var run CrawlRun
		var startedAt string
		var durationMs int64
		if err := rows.Scan(&run.ID, &run.RunID, &startedAt, &durationMs,
			&run.Found, &run.Processed, &run.SkippedDuplicate,
			&run.SkippedInvalid, &run.SkippedUnreadable, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan crawl run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// IngestTotals aggregates all recorded ingest cycles.
func (s *Store) IngestTotals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(added), 0),
                COALESCE(SUM(duplicate_name), 0),
                COALESCE(SUM(rejected_extension), 0),
                COALESCE(SUM(failed), 0)
         FROM ingest_cycles`,
	).Scan(&t.Cycles, &t.Added, &t.DuplicateName, &t.RejectedExtension, &t.Failed)
	if err != nil {
		return Totals{}, fmt.Errorf("aggregate ingest cycles: %w", err)
	}
	return t, nil
}
