package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bindery/internal/crawler"
	"bindery/internal/preflight"
	"bindery/internal/transfer"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the source tree and crawl on changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if err := preflight.Verify(cfg); err != nil {
				return err
			}

			tracker, err := ctx.openLedger(logger)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer tracker.Close()

			mover := transfer.New(cfg.Paths.SourceDir, cfg.Paths.BackupDir, cfg.Paths.StagingDir, logger)
			crawl := crawler.New(cfg.Paths.SourceDir, tracker, mover, logger)
			lock := crawler.NewLock(cfg.CrawlLockPath())
			debounce := time.Duration(cfg.Crawl.WatchDebounceSeconds) * time.Second
			watcher := crawler.NewWatcher(cfg.Paths.SourceDir, debounce, crawl, lock, logger)

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return watcher.Watch(signalCtx)
		},
	}
}
