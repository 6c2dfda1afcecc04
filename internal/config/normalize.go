package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeCrawl()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LedgerDir, err = expandPath(c.Paths.LedgerDir); err != nil {
		return fmt.Errorf("paths.ledger_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	var err error
	if c.Catalog.LibraryDir, err = expandPath(c.Catalog.LibraryDir); err != nil {
		return fmt.Errorf("catalog.library_dir: %w", err)
	}
	c.Catalog.Binary = strings.TrimSpace(c.Catalog.Binary)
	if c.Catalog.Binary == "" {
		c.Catalog.Binary = defaultCatalogBinary
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeIngest() {
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = defaultBatchSize
	}
	if c.Ingest.BatchPauseSeconds <= 0 {
		c.Ingest.BatchPauseSeconds = defaultBatchPauseSeconds
	}
	if c.Ingest.CycleIntervalSeconds <= 0 {
		c.Ingest.CycleIntervalSeconds = defaultCycleIntervalSeconds
	}
}

func (c *Config) normalizeCrawl() {
	if c.Crawl.WatchDebounceSeconds <= 0 {
		c.Crawl.WatchDebounceSeconds = defaultWatchDebounceSeconds
	}
	if c.Crawl.PeriodicMinutes < 0 {
		c.Crawl.PeriodicMinutes = 0
	}
	if c.Crawl.MinFreeSpaceMiB < 0 {
		c.Crawl.MinFreeSpaceMiB = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
