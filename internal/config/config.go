package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directory layout the pipeline operates over.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	BackupDir  string `toml:"backup_dir"`
	StagingDir string `toml:"staging_dir"`
	LedgerDir  string `toml:"ledger_dir"`
	LogDir     string `toml:"log_dir"`
}

// Catalog contains configuration for the external catalog tool.
type Catalog struct {
	LibraryDir     string `toml:"library_dir"`
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Ingest contains configuration for the batched catalog-add loop.
type Ingest struct {
	BatchSize            int `toml:"batch_size"`
	BatchPauseSeconds    int `toml:"batch_pause_seconds"`
	CycleIntervalSeconds int `toml:"cycle_interval_seconds"`
}

// Crawl contains configuration for source-tree discovery.
type Crawl struct {
	WatchDebounceSeconds int `toml:"watch_debounce_seconds"`
	PeriodicMinutes      int `toml:"periodic_minutes"`
	MinFreeSpaceMiB      int `toml:"min_free_space_mib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bindery.
//
// Sections by subsystem:
//   - Paths: source, backup, staging, ledger, and log directories
//   - Catalog: external catalog library and CLI binary
//   - Ingest: batch size, intra-cycle pause, and cycle interval
//   - Crawl: watch-mode debounce, periodic crawl interval, free-space floor
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Catalog Catalog `toml:"catalog"`
	Ingest  Ingest  `toml:"ingest"`
	Crawl   Crawl   `toml:"crawl"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bindery/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bindery.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes to. The source
// tree is deliberately excluded: it belongs to whoever deposits files and a
// missing source root is a setup error, not something to paper over.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.BackupDir, c.Paths.StagingDir, c.Paths.LedgerDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the path of the append-only content-hash ledger.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.LedgerDir, "processed.ledger")
}

// CrawlLockPath returns the lock file serializing crawl passes.
func (c *Config) CrawlLockPath() string {
	return filepath.Join(c.Paths.LedgerDir, "crawl.lock")
}

// HistoryDBPath returns the path of the run-history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

// CatalogBinary returns the catalog executable name.
func (c *Config) CatalogBinary() string {
	if strings.TrimSpace(c.Catalog.Binary) != "" {
		return c.Catalog.Binary
	}
	return "calibredb"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
