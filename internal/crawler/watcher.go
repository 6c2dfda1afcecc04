package crawler

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"bindery/internal/classify"
	"bindery/internal/logging"
)

// Watcher drives crawl passes from filesystem events instead of a schedule.
// Events are debounced: a burst of creates (an unpacking archive, a multi-file
// copy) settles into a single crawl pass once the tree goes quiet.
type Watcher struct {
	sourceRoot string
	debounce   time.Duration
	crawler    *Crawler
	lock       *Lock
	logger     *slog.Logger
}

// NewWatcher constructs a watcher over the source root.
func NewWatcher(sourceRoot string, debounce time.Duration, c *Crawler, lock *Lock, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		sourceRoot: sourceRoot,
		debounce:   debounce,
		crawler:    c,
		lock:       lock,
		logger:     logger.With(logging.String("component", "watcher")),
	}
}

// Watch blocks until ctx is cancelled, running one crawl pass per settled
// burst of create/write/rename events. Directories created at runtime are
// added to the watch list. Returns nil on cancellation.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.sourceRoot); err != nil {
		return err
	}

	w.logger.Info("watching source tree", logging.String("root", w.sourceRoot))

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	scheduleCrawl := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(w.debounce)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			w.logger.Info("watcher stopped")
			return nil

		case <-debounceCh:
			w.runPass(ctx)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if classify.IsArtifactDir(filepath.Base(ev.Name)) {
						continue
					}
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watch new directory failed",
							logging.String("path", ev.Name), logging.Error(addErr))
					}
					scheduleCrawl()
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !classify.IsBookCandidate(ev.Name) {
				continue
			}
			scheduleCrawl()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) runPass(ctx context.Context) {
	if w.lock != nil {
		ok, err := w.lock.Acquire()
		if err != nil {
			w.logger.Error("crawl lock failed", logging.Error(err))
			return
		}
		if !ok {
			w.logger.Debug("crawl already in flight, skipping watch-triggered pass")
			return
		}
		defer func() {
			_ = w.lock.Release()
		}()
	}
	if _, err := w.crawler.Crawl(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("watch-triggered crawl failed", logging.Error(err))
	}
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && classify.IsArtifactDir(entry.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
