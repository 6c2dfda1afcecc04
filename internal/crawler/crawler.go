package crawler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"bindery/internal/classify"
	"bindery/internal/ledger"
	"bindery/internal/logging"
	"bindery/internal/services"
	"bindery/internal/transfer"
)

// Summary reports the outcome of one crawl pass. Per-file errors never abort
// a pass; they land in SkippedUnreadable or Failed.
type Summary struct {
	Found             int
	Processed         int
	SkippedDuplicate  int
	SkippedInvalid    int
	SkippedUnreadable int
	Failed            int
	Duration          time.Duration
}

// Crawler walks the source tree and feeds new, valid, unseen files through the
// transfer step, recording each success in the ledger. A single crawl is a
// sequential scan; files are handled independently with no ordering guarantee.
type Crawler struct {
	sourceRoot string
	tracker    *ledger.Ledger
	transferer *transfer.Transferer
	logger     *slog.Logger
}

// New constructs a Crawler.
func New(sourceRoot string, tracker *ledger.Ledger, transferer *transfer.Transferer, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Crawler{
		sourceRoot: sourceRoot,
		tracker:    tracker,
		transferer: transferer,
		logger:     logger.With(logging.String("component", "crawler")),
	}
}

// Crawl performs one pass over the source tree. Re-running immediately after
// a successful pass with no new files yields Processed == 0.
func (c *Crawler) Crawl(ctx context.Context) (Summary, error) {
	start := time.Now()
	var summary Summary

	err := filepath.WalkDir(c.sourceRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == c.sourceRoot {
				return services.Wrap(services.ErrConfiguration, "crawler", "walk", "source root unreadable", walkErr)
			}
			c.logger.Warn("unreadable entry skipped", logging.String("path", path), logging.Error(walkErr))
			summary.SkippedUnreadable++
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			if path != c.sourceRoot && classify.IsArtifactDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if classify.IsCatalogArtifact(entry.Name()) {
			return nil
		}

		summary.Found++
		c.handleFile(path, entry.Name(), &summary)
		return nil
	})

	summary.Duration = time.Since(start)
	if err != nil {
		return summary, err
	}

	c.logger.Info("crawl pass complete",
		logging.Int("found", summary.Found),
		logging.Int("processed", summary.Processed),
		logging.Int("skipped_duplicate", summary.SkippedDuplicate),
		logging.Int("skipped_invalid", summary.SkippedInvalid),
		logging.Int("skipped_unreadable", summary.SkippedUnreadable),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// handleFile runs the per-file pipeline: classify, hash, dedup check,
// transfer, record. The hash is computed lazily, only after the
// classification gate, so unsupported files are never read.
func (c *Crawler) handleFile(path, name string, summary *Summary) {
	if !classify.IsBookCandidate(name) {
		summary.SkippedInvalid++
		return
	}

	contentHash, err := ledger.HashFile(path)
	if err != nil {
		// Unreadable or empty: leave at its original location for manual
		// handling, never delete, never record.
		c.logger.Warn("file unprocessable, left in place", logging.String("path", path), logging.Error(err))
		summary.SkippedUnreadable++
		return
	}

	if c.tracker.IsProcessed(contentHash) {
		// Same content already handled in a previous pass, possibly under a
		// different name or location.
		c.logger.Debug("duplicate content skipped",
			logging.String("path", path),
			logging.String("hash", contentHash))
		summary.SkippedDuplicate++
		return
	}

	stagedPath, err := c.transferer.Transfer(path)
	if err != nil {
		msg := "transfer failed, will retry next pass"
		if errors.Is(err, services.ErrLinkConflict) {
			// Content dedup has not recorded this file yet; an operator must
			// resolve the staging name collision.
			msg = "staging name collision needs operator attention"
		}
		c.logger.Error(msg, logging.String("path", path), logging.Error(err))
		summary.Failed++
		return
	}

	if err := c.tracker.Record(contentHash, name, path, time.Now().UTC()); err != nil {
		// Backed up and staged but not recorded: the next pass re-hashes the
		// backup's staged sibling only if the same content reappears in the
		// source tree, which the link conflict check then surfaces.
		c.logger.Error("ledger record failed", logging.String("path", path), logging.Error(err))
		summary.Failed++
		return
	}

	c.logger.Info("processed new file",
		logging.String("path", path),
		logging.String("staged", stagedPath),
		logging.String("hash", contentHash))
	summary.Processed++
}
