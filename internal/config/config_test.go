package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bindery/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Ingest.BatchSize != 10 {
		t.Fatalf("expected default batch size 10, got %d", cfg.Ingest.BatchSize)
	}
	if cfg.CatalogBinary() != "calibredb" {
		t.Fatalf("unexpected catalog binary %q", cfg.CatalogBinary())
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
source_dir = "` + dir + `/incoming"
backup_dir = "` + dir + `/backup"
staging_dir = "` + dir + `/staging"
ledger_dir = "` + dir + `/ledger"
log_dir = "` + dir + `/logs"

[catalog]
library_dir = "` + dir + `/library"

[ingest]
batch_size = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Ingest.BatchSize != 3 {
		t.Fatalf("expected batch size 3, got %d", cfg.Ingest.BatchSize)
	}
	if !filepath.IsAbs(cfg.Paths.SourceDir) {
		t.Fatalf("expected absolute source dir, got %q", cfg.Paths.SourceDir)
	}
	if cfg.LedgerPath() != filepath.Join(dir, "ledger", "processed.ledger") {
		t.Fatalf("unexpected ledger path %q", cfg.LedgerPath())
	}
}

func TestValidateRejectsBackupInsideSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
source_dir = "` + dir + `/incoming"
backup_dir = "` + dir + `/incoming/backup"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for backup inside source")
	}
	if !strings.Contains(err.Error(), "backup_dir") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unsupported log format")
	}
}

func TestEnsureDirectoriesCreatesPipelineDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(dir, "incoming")
	cfg.Paths.BackupDir = filepath.Join(dir, "backup")
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.LedgerDir = filepath.Join(dir, "ledger")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, p := range []string{cfg.Paths.BackupDir, cfg.Paths.StagingDir, cfg.Paths.LedgerDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist", p)
		}
	}
	// Source tree is owned by the depositor, never created implicitly.
	if _, err := os.Stat(cfg.Paths.SourceDir); !os.IsNotExist(err) {
		t.Fatalf("expected source dir to stay absent, stat err: %v", err)
	}
}
