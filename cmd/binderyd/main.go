// binderyd is the headless daemon entrypoint: it loads the default
// configuration, runs preflight checks, and supervises the crawl and ingest
// loops until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"bindery/internal/config"
	"bindery/internal/daemon"
	"bindery/internal/logging"
	"bindery/internal/preflight"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := preflight.Verify(cfg); err != nil {
		logger.Error("preflight failed", logging.Error(err))
		log.Fatalf("preflight: %v", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("binderyd shutting down")
}
