// Package daemon wires the crawler and ingestor into a single supervised
// background process with single-instance enforcement.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bindery/internal/config"
	"bindery/internal/crawler"
	"bindery/internal/history"
	"bindery/internal/ingest"
	"bindery/internal/ledger"
	"bindery/internal/logging"
	"bindery/internal/services"
	"bindery/internal/services/catalog"
	"bindery/internal/transfer"
)

// Daemon runs the ingest loop plus optional watch and periodic crawl passes.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracker *ledger.Ledger
	store   *history.Store

	crawler   *crawler.Crawler
	crawlLock *crawler.Lock
	watcher   *crawler.Watcher
	ingestor  *ingest.Ingestor

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	LockFilePath  string
	LedgerPath    string
	HistoryDBPath string
	Ledger        ledger.Stats
}

// New constructs a daemon with all pipeline dependencies initialized. The
// caller owns Close.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	tracker, err := ledger.Open(cfg.LedgerPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		_ = tracker.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}

	mover := transfer.New(cfg.Paths.SourceDir, cfg.Paths.BackupDir, cfg.Paths.StagingDir, logger)
	crawl := crawler.New(cfg.Paths.SourceDir, tracker, mover, logger)
	crawlLock := crawler.NewLock(cfg.CrawlLockPath())

	svc := catalog.NewCLI(cfg.Catalog.LibraryDir,
		catalog.WithBinary(cfg.CatalogBinary()),
		catalog.WithTimeout(time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second))
	ingestor := ingest.New(cfg, svc, logger)

	d := &Daemon{
		cfg:       cfg,
		logger:    logger.With(logging.String("component", "daemon")),
		tracker:   tracker,
		store:     store,
		crawler:   crawl,
		crawlLock: crawlLock,
		ingestor:  ingestor,
		lockPath:  filepath.Join(cfg.Paths.LogDir, "binderyd.lock"),
	}
	d.lock = flock.New(d.lockPath)
	d.ingestor.OnCycle(d.recordIngestCycle)

	if cfg.Crawl.WatchDebounceSeconds > 0 {
		debounce := time.Duration(cfg.Crawl.WatchDebounceSeconds) * time.Second
		d.watcher = crawler.NewWatcher(cfg.Paths.SourceDir, debounce, crawl, crawlLock, logger)
	}
	return d, nil
}

// Start acquires the daemon lock and launches the background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another bindery daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.ingestor.Run(runCtx)
	}()

	if d.watcher != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.watcher.Watch(runCtx); err != nil && runCtx.Err() == nil {
				d.logger.Error("source watcher exited", logging.Error(err))
			}
		}()
	}

	if d.cfg.Crawl.PeriodicMinutes > 0 {
		interval := time.Duration(d.cfg.Crawl.PeriodicMinutes) * time.Minute
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.periodicCrawl(runCtx, interval)
		}()
	}

	d.running.Store(true)
	d.logger.Info("bindery daemon started",
		logging.String("session_id", uuid.NewString()),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels the background loops and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("bindery daemon stopped")
}

// Close stops the daemon and releases its stores.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.tracker != nil {
		errs = append(errs, d.tracker.Close())
	}
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	return errors.Join(errs...)
}

// CrawlOnce runs a single crawl pass under the crawl lock and records it.
// Returns false without error when another crawl already holds the lock.
func (d *Daemon) CrawlOnce(ctx context.Context) (crawler.Summary, bool, error) {
	acquired, err := d.crawlLock.Acquire()
	if err != nil {
		return crawler.Summary{}, false, fmt.Errorf("acquire crawl lock: %w", err)
	}
	if !acquired {
		return crawler.Summary{}, false, nil
	}
	defer func() {
		if err := d.crawlLock.Release(); err != nil {
			d.logger.Warn("failed to release crawl lock", logging.Error(err))
		}
	}()

	started := time.Now()
	summary, err := d.crawler.Crawl(ctx)
	if err != nil {
		return summary, true, err
	}
	d.recordCrawl(ctx, started, summary)
	return summary, true, nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		LockFilePath:  d.lockPath,
		LedgerPath:    d.tracker.Path(),
		HistoryDBPath: d.cfg.HistoryDBPath(),
		Ledger:        d.tracker.Stats(),
	}
}

func (d *Daemon) periodicCrawl(ctx context.Context, interval time.Duration) {
	d.logger.Info("periodic crawl enabled", logging.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		summary, ran, err := d.CrawlOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if services.IsFatal(err) {
				// Setup breakage (source root gone, ledger dir unwritable)
				// will not heal on a timer; stop the loop instead of spinning.
				d.logger.Error("periodic crawl aborted", logging.Error(err))
				return
			}
			d.logger.Error("periodic crawl failed", logging.Error(err))
			continue
		}
		if !ran {
			d.logger.Info("periodic crawl skipped, another crawl in progress")
			continue
		}
		d.logger.Info("periodic crawl complete",
			logging.Int("found", summary.Found),
			logging.Int("processed", summary.Processed))
	}
}

func (d *Daemon) recordCrawl(ctx context.Context, started time.Time, summary crawler.Summary) {
	run := history.CrawlRun{
		RunID:             uuid.NewString(),
		StartedAt:         started,
		Duration:          summary.Duration,
		Found:             summary.Found,
		Processed:         summary.Processed,
		SkippedDuplicate:  summary.SkippedDuplicate,
		SkippedInvalid:    summary.SkippedInvalid,
		SkippedUnreadable: summary.SkippedUnreadable,
		Failed:            summary.Failed,
	}
	if err := d.store.RecordCrawl(ctx, run); err != nil {
		d.logger.Warn("failed to record crawl history", logging.Error(err))
	}
}

func (d *Daemon) recordIngestCycle(stats ingest.CycleStats) {
	cycle := history.IngestCycle{
		OccurredAt:        time.Now(),
		Examined:          stats.Examined,
		Added:             stats.Added,
		DuplicateName:     stats.DuplicateName,
		RejectedExtension: stats.RejectedExtension,
		Failed:            stats.Failed,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.RecordIngestCycle(ctx, cycle); err != nil {
		d.logger.Warn("failed to record ingest history", logging.Error(err))
	}
}
