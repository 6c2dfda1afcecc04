package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bindery/internal/config"
	"bindery/internal/services"
	"bindery/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	contents := fmt.Sprintf(`[paths]
source_dir = %q
backup_dir = %q
staging_dir = %q
ledger_dir = %q
log_dir = %q

[catalog]
library_dir = %q
binary = "true"

[crawl]
min_free_space_mib = 1
`, cfg.Paths.SourceDir, cfg.Paths.BackupDir, cfg.Paths.StagingDir,
		cfg.Paths.LedgerDir, cfg.Paths.LogDir, cfg.Catalog.LibraryDir)

	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	testsupport.WriteFile(t, path, []byte(contents))
	return path
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q does not contain %q", haystack, needle)
	}
}

func TestConfigInitWritesSampleFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("config init over existing file succeeded without --overwrite")
	}
}

func TestCrawlCommandStagesBooks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "fiction", "solaris.epub"), []byte("solaris"))

	out, err := runCLI(t, []string{"crawl"}, configPath)
	if err != nil {
		t.Fatalf("crawl: %v\noutput: %s", err, out)
	}
	requireContains(t, out, "Crawl finished")

	staged, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(staged) != 1 || staged[0].Name() != "solaris.epub" {
		t.Fatalf("staging contents = %v, want [solaris.epub]", staged)
	}
}

func TestLedgerStatsAfterCrawl(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "dune.epub"), []byte("dune"))

	if _, err := runCLI(t, []string{"crawl"}, configPath); err != nil {
		t.Fatalf("crawl: %v", err)
	}

	out, err := runCLI(t, []string{"ledger", "stats"}, configPath)
	if err != nil {
		t.Fatalf("ledger stats: %v", err)
	}
	requireContains(t, out, "Records: 1")
	requireContains(t, out, "Unique hashes: 1")
}

func TestRenderErrorMarksSetupFailures(t *testing.T) {
	fatal := services.Wrap(services.ErrConfiguration, "crawler", "walk", "source root unreadable", nil)
	if got := renderError(fatal); !strings.HasPrefix(got, "setup error: ") {
		t.Fatalf("renderError(fatal) = %q, want setup error prefix", got)
	}

	transient := services.Wrap(services.ErrCatalogAdd, "ingest", "add", "tool exited 1", nil)
	if got := renderError(transient); strings.HasPrefix(got, "setup error: ") {
		t.Fatalf("renderError(transient) = %q, must not carry setup error prefix", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"the_dispossessed.epub", "The Dispossessed"},
		{"left-hand.of.darkness.mobi", "Left Hand Of Darkness"},
		{"plain.pdf", "Plain"},
	}
	for _, tc := range cases {
		if got := displayTitle(tc.in); got != tc.want {
			t.Errorf("displayTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
