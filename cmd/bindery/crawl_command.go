package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bindery/internal/daemon"
	"bindery/internal/preflight"
)

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl pass over the source tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if !skipPreflight {
				if err := preflight.Verify(cfg); err != nil {
					return err
				}
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			summary, ran, err := d.CrawlOnce(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ran {
				fmt.Fprintln(out, "Another crawl is already in progress; nothing to do.")
				return nil
			}

			fmt.Fprintf(out, "Crawl finished in %s\n", summary.Duration.Round(summaryRounding))
			fmt.Fprint(out, renderTable(
				[]string{"OUTCOME", "COUNT"},
				[][]string{
					{"Found", fmt.Sprintf("%d", summary.Found)},
					{"Processed", fmt.Sprintf("%d", summary.Processed)},
					{"Skipped (duplicate)", fmt.Sprintf("%d", summary.SkippedDuplicate)},
					{"Skipped (invalid)", fmt.Sprintf("%d", summary.SkippedInvalid)},
					{"Skipped (unreadable)", fmt.Sprintf("%d", summary.SkippedUnreadable)},
					{"Failed", fmt.Sprintf("%d", summary.Failed)},
				},
				[]columnAlignment{alignLeft, alignRight},
			)+"\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before crawling")
	return cmd
}
