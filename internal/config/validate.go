package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	named := map[string]string{
		"paths.source_dir":  c.Paths.SourceDir,
		"paths.backup_dir":  c.Paths.BackupDir,
		"paths.staging_dir": c.Paths.StagingDir,
		"paths.ledger_dir":  c.Paths.LedgerDir,
		"paths.log_dir":     c.Paths.LogDir,
	}
	for _, key := range []string{"paths.source_dir", "paths.backup_dir", "paths.staging_dir", "paths.ledger_dir", "paths.log_dir"} {
		if named[key] == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	// The backup root must not live inside the source tree or crawls would
	// rediscover their own backups.
	if within(c.Paths.BackupDir, c.Paths.SourceDir) {
		return errors.New("paths.backup_dir must not be inside paths.source_dir")
	}
	if within(c.Paths.StagingDir, c.Paths.SourceDir) {
		return errors.New("paths.staging_dir must not be inside paths.source_dir")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.LibraryDir == "" {
		return errors.New("catalog.library_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func within(path, root string) bool {
	if path == root {
		return true
	}
	return len(path) > len(root) && path[:len(root)] == root && path[len(root)] == '/'
}
