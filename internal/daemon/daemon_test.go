package daemon_test

import (
	"context"
	"path/filepath"
	"testing"

	"bindery/internal/daemon"
	"bindery/internal/logging"
	"bindery/internal/testsupport"
)

func newDaemon(t *testing.T) (*daemon.Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Crawl.WatchDebounceSeconds = 0
	cfg.Crawl.PeriodicMinutes = 0

	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, cfg.Paths.SourceDir
}

func TestStartEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Crawl.WatchDebounceSeconds = 0
	cfg.Crawl.PeriodicMinutes = 0
	ctx := context.Background()

	first, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := first.Start(ctx); err == nil {
		t.Fatal("second Start() on running daemon succeeded, want error")
	}

	second, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New() second instance = %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	if err := second.Start(ctx); err == nil {
		t.Fatal("second daemon instance acquired the lock while first is running")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("Start() after first instance stopped = %v", err)
	}
	second.Stop()
}

func TestCrawlOnceProcessesSourceFiles(t *testing.T) {
	d, sourceDir := newDaemon(t)
	testsupport.WriteFile(t, filepath.Join(sourceDir, "novels", "dune.epub"), []byte("dune contents"))

	summary, ran, err := d.CrawlOnce(context.Background())
	if err != nil {
		t.Fatalf("CrawlOnce() = %v", err)
	}
	if !ran {
		t.Fatal("CrawlOnce() reported crawl lock held in fresh environment")
	}
	if summary.Processed != 1 {
		t.Fatalf("summary.Processed = %d, want 1", summary.Processed)
	}
}

func TestStatusReportsLedger(t *testing.T) {
	d, sourceDir := newDaemon(t)
	testsupport.WriteFile(t, filepath.Join(sourceDir, "a.epub"), []byte("a"))
	testsupport.WriteFile(t, filepath.Join(sourceDir, "b.epub"), []byte("b"))

	if _, _, err := d.CrawlOnce(context.Background()); err != nil {
		t.Fatalf("CrawlOnce() = %v", err)
	}

	status := d.Status()
	if status.Running {
		t.Fatal("Status().Running = true before Start")
	}
	if status.Ledger.TotalRecords != 2 {
		t.Fatalf("Ledger.TotalRecords = %d, want 2", status.Ledger.TotalRecords)
	}
}
