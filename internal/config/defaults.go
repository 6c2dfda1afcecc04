package config

const (
	defaultSourceDir     = "~/books/incoming"
	defaultBackupDir     = "~/.local/share/bindery/backup"
	defaultStagingDir    = "~/.local/share/bindery/staging"
	defaultLedgerDir     = "~/.local/share/bindery"
	defaultLogDir        = "~/.local/share/bindery/logs"
	defaultLibraryDir    = "~/books/library"
	defaultCatalogBinary = "calibredb"

	defaultCatalogTimeoutSeconds = 300
	defaultBatchSize             = 10
	defaultBatchPauseSeconds     = 2
	defaultCycleIntervalSeconds  = 30
	defaultWatchDebounceSeconds  = 5
	defaultPeriodicMinutes       = 0
	defaultMinFreeSpaceMiB       = 512

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  defaultSourceDir,
			BackupDir:  defaultBackupDir,
			StagingDir: defaultStagingDir,
			LedgerDir:  defaultLedgerDir,
			LogDir:     defaultLogDir,
		},
		Catalog: Catalog{
			LibraryDir:     defaultLibraryDir,
			Binary:         defaultCatalogBinary,
			TimeoutSeconds: defaultCatalogTimeoutSeconds,
		},
		Ingest: Ingest{
			BatchSize:            defaultBatchSize,
			BatchPauseSeconds:    defaultBatchPauseSeconds,
			CycleIntervalSeconds: defaultCycleIntervalSeconds,
		},
		Crawl: Crawl{
			WatchDebounceSeconds: defaultWatchDebounceSeconds,
			PeriodicMinutes:      defaultPeriodicMinutes,
			MinFreeSpaceMiB:      defaultMinFreeSpaceMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
