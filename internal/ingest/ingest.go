package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bindery/internal/classify"
	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/services/catalog"
)

// CycleStats reports one sweep of the staging directory.
type CycleStats struct {
	Examined          int
	Added             int
	DuplicateName     int
	RejectedExtension int
	Failed            int
}

// Empty reports whether the cycle saw no staged files at all.
func (s CycleStats) Empty() bool {
	return s.Examined == 0
}

// Ingestor consumes the staging directory in rate-limited batches, adding each
// staged file to the catalog and deleting it on success or on terminal
// duplicate detection. Deleting a staged file never destroys its backup copy;
// the two are hardlinks to the same inode.
type Ingestor struct {
	stagingDir    string
	catalog       catalog.Service
	batchSize     int
	batchPause    time.Duration
	cycleInterval time.Duration
	logger        *slog.Logger

	// onCycle, when set, receives the stats of every non-empty cycle.
	onCycle func(CycleStats)
}

// New constructs an Ingestor from config.
func New(cfg *config.Config, svc catalog.Service, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ingestor{
		stagingDir:    cfg.Paths.StagingDir,
		catalog:       svc,
		batchSize:     cfg.Ingest.BatchSize,
		batchPause:    time.Duration(cfg.Ingest.BatchPauseSeconds) * time.Second,
		cycleInterval: time.Duration(cfg.Ingest.CycleIntervalSeconds) * time.Second,
		logger:        logger.With(logging.String("component", "ingest")),
	}
}

// OnCycle registers a callback invoked after each non-empty cycle.
func (i *Ingestor) OnCycle(fn func(CycleStats)) {
	i.onCycle = fn
}

// Run loops RunCycle until ctx is cancelled, sleeping the configured interval
// between cycles. Per-file failures never halt the loop. Returns nil on
// cancellation.
func (i *Ingestor) Run(ctx context.Context) error {
	i.logger.Info("ingest loop started",
		logging.String("staging", i.stagingDir),
		logging.Int("batch_size", i.batchSize),
		logging.Duration("cycle_interval", i.cycleInterval))

	for {
		stats, err := i.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			i.logger.Error("ingest cycle failed", logging.Error(err))
		}
		if !stats.Empty() && i.onCycle != nil {
			i.onCycle(stats)
		}

		select {
		case <-ctx.Done():
			i.logger.Info("ingest loop stopped")
			return nil
		case <-time.After(i.cycleInterval):
		}
	}
}

// RunCycle performs one sweep: staged files are handled in lexicographic
// order, with a pause after every batchSize catalog-add attempts as
// backpressure against the catalog tool.
func (i *Ingestor) RunCycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	names, err := i.listStaged()
	if err != nil {
		return stats, err
	}
	if len(names) == 0 {
		return stats, nil
	}

	// One catalog snapshot per cycle; a file added mid-cycle is caught by the
	// next cycle's snapshot at the latest.
	entries, err := i.catalog.List(ctx)
	if err != nil {
		return stats, err
	}

	attempts := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Examined++
		stagedPath := filepath.Join(i.stagingDir, name)

		if !classify.IsIngestible(name) {
			// Staging only ever holds files the crawler already classified;
			// a mismatch is configuration drift between components.
			i.logger.Warn("unsupported file in staging, removing",
				logging.String("file", name))
			i.removeStaged(stagedPath, &stats.Failed)
			stats.RejectedExtension++
			continue
		}

		if catalog.HasFilename(entries, name) {
			i.logger.Info("catalog already holds filename, removing from staging",
				logging.String("file", name))
			i.removeStaged(stagedPath, &stats.Failed)
			stats.DuplicateName++
			continue
		}

		if attempts > 0 && attempts%i.batchSize == 0 {
			if err := sleepFn(ctx, i.batchPause); err != nil {
				return stats, err
			}
		}
		attempts++

		if err := i.catalog.Add(ctx, stagedPath, true); err != nil {
			// Retried automatically: the file stays staged for the next cycle.
			i.logger.Warn("catalog add failed, retaining staged file",
				logging.String("file", name), logging.Error(err))
			stats.Failed++
			continue
		}

		i.removeStaged(stagedPath, &stats.Failed)
		stats.Added++
		i.logger.Info("added to catalog", logging.String("file", name))
	}

	i.logger.Info("ingest cycle complete",
		logging.Int("examined", stats.Examined),
		logging.Int("added", stats.Added),
		logging.Int("duplicate_name", stats.DuplicateName),
		logging.Int("rejected_extension", stats.RejectedExtension),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

// listStaged returns staged file names in lexicographic order. Subdirectories
// are ignored: staging is flat by contract.
func (i *Ingestor) listStaged() ([]string, error) {
	entries, err := os.ReadDir(i.stagingDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (i *Ingestor) removeStaged(path string, failed *int) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		i.logger.Error("remove staged file failed", logging.String("path", path), logging.Error(err))
		*failed++
	}
}

var sleepFn = sleepCtx

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
