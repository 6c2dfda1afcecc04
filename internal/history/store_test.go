package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bindery/internal/history"
)

func openStore(t *testing.T, dir string) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListCrawlRuns(t *testing.T) {
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.RecordCrawl(ctx, history.CrawlRun{
			RunID:            "run-" + string(rune('a'+i)),
			StartedAt:        started.Add(time.Duration(i) * time.Hour),
			Duration:         1500 * time.Millisecond,
			Found:            10,
			Processed:        i,
			SkippedDuplicate: 10 - i,
		})
		if err != nil {
			t.Fatalf("RecordCrawl failed: %v", err)
		}
	}

	runs, err := store.RecentCrawls(ctx, 2)
	if err != nil {
		t.Fatalf("RecentCrawls failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].RunID != "run-c" || runs[1].RunID != "run-b" {
		t.Fatalf("unexpected order: %v, %v", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected duration: %v", runs[0].Duration)
	}
}

func TestIngestTotalsAggregates(t *testing.T) {
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	cycles := []history.IngestCycle{
		{OccurredAt: time.Now(), Examined: 10, Added: 8, DuplicateName: 1, Failed: 1},
		{OccurredAt: time.Now(), Examined: 5, Added: 5},
	}
	for _, cycle := range cycles {
		if err := store.RecordIngestCycle(ctx, cycle); err != nil {
			t.Fatalf("RecordIngestCycle failed: %v", err)
		}
	}

	totals, err := store.IngestTotals(ctx)
	if err != nil {
		t.Fatalf("IngestTotals failed: %v", err)
	}
	if totals.Cycles != 2 || totals.Added != 13 || totals.DuplicateName != 1 || totals.Failed != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestIngestTotalsEmptyDatabase(t *testing.T) {
	store := openStore(t, t.TempDir())
	totals, err := store.IngestTotals(context.Background())
	if err != nil {
		t.Fatalf("IngestTotals failed: %v", err)
	}
	if totals != (history.Totals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)
	if err := store.RecordCrawl(context.Background(), history.CrawlRun{RunID: "r", StartedAt: time.Now()}); err != nil {
		t.Fatalf("RecordCrawl failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := openStore(t, dir)
	runs, err := reopened.RecentCrawls(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentCrawls failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run, got %d", len(runs))
	}
}
