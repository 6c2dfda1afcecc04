package crawler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bindery/internal/crawler"
)

func startWatcher(t *testing.T, p *pipeline, lock *crawler.Lock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	watcher := crawler.NewWatcher(p.source, 150*time.Millisecond, p.crawler, lock, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Watch(ctx); err != nil {
			t.Errorf("Watch returned: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register the source tree.
	time.Sleep(100 * time.Millisecond)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcherStagesNewFile(t *testing.T) {
	p := newPipeline(t)
	startWatcher(t, p, nil)

	p.write(t, "a/fresh.epub", "fresh bytes")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := os.Stat(filepath.Join(p.staging, "fresh.epub"))
		return err == nil
	}, "new file not staged by watcher")
}

func TestWatcherCoalescesBurstIntoOnePass(t *testing.T) {
	p := newPipeline(t)
	startWatcher(t, p, nil)

	// A burst of deposits inside one debounce window settles into a single
	// pass that picks everything up.
	p.write(t, "a/one.epub", "one")
	p.write(t, "a/two.epub", "two")
	p.write(t, "b/three.pdf", "three")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return len(p.stagingEntries(t)) == 3
	}, "burst of files not fully staged")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return p.tracker.Stats().TotalRecords == 3
	}, "burst of files not fully recorded in ledger")
}

func TestWatcherRegistersNewDirectories(t *testing.T) {
	p := newPipeline(t)
	startWatcher(t, p, nil)

	subDir := filepath.Join(p.source, "arrivals")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	p.write(t, "arrivals/deep.epub", "deep bytes")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := os.Stat(filepath.Join(p.staging, "deep.epub"))
		return err == nil
	}, "file in runtime-created directory not staged")
}

func TestWatcherSkipsPassWhileCrawlLockHeld(t *testing.T) {
	p := newPipeline(t)
	lockPath := filepath.Join(p.source, "..", "crawl.lock")
	lock := crawler.NewLock(lockPath)
	startWatcher(t, p, lock)

	holder := crawler.NewLock(lockPath)
	ok, err := holder.Acquire()
	if err != nil || !ok {
		t.Fatalf("Acquire = %v, %v", ok, err)
	}

	p.write(t, "a/held.epub", "held bytes")
	// Debounce fires, finds the lock held, and skips the pass.
	time.Sleep(500 * time.Millisecond)
	if staged := p.stagingEntries(t); len(staged) != 0 {
		t.Fatalf("pass ran while crawl lock was held: %v", staged)
	}

	if err := holder.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	// The next event triggers a pass that now acquires the lock and picks up
	// everything left behind.
	p.write(t, "a/free.epub", "free bytes")
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return len(p.stagingEntries(t)) == 2
	}, "pass did not run after crawl lock was released")
}
