package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bindery/internal/ingest"
	"bindery/internal/services/catalog"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Feed staged files into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			svc := catalog.NewCLI(cfg.Catalog.LibraryDir,
				catalog.WithBinary(cfg.CatalogBinary()),
				catalog.WithTimeout(time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second))
			ingestor := ingest.New(cfg, svc, logger)

			if once {
				stats, err := ingestor.RunCycle(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable(
					[]string{"OUTCOME", "COUNT"},
					[][]string{
						{"Examined", fmt.Sprintf("%d", stats.Examined)},
						{"Added", fmt.Sprintf("%d", stats.Added)},
						{"Duplicate name", fmt.Sprintf("%d", stats.DuplicateName)},
						{"Rejected extension", fmt.Sprintf("%d", stats.RejectedExtension)},
						{"Failed", fmt.Sprintf("%d", stats.Failed)},
					},
					[]columnAlignment{alignLeft, alignRight},
				)+"\n")
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return ingestor.Run(signalCtx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single ingest cycle and exit")
	return cmd
}
