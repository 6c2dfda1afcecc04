package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bindery/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var crawlLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger totals and recent run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			tracker, err := ctx.openLedger(logger)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer tracker.Close()

			store, err := ctx.openHistory()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			stats := tracker.Stats()

			fmt.Fprintf(out, "Ledger: %s\n", cfg.LedgerPath())
			fmt.Fprint(out, renderTable(
				[]string{"LEDGER", "COUNT"},
				[][]string{
					{"Records", fmt.Sprintf("%d", stats.TotalRecords)},
					{"Unique hashes", fmt.Sprintf("%d", stats.UniqueHashes)},
					{"Duplicate names", fmt.Sprintf("%d", stats.DuplicateNameEntries)},
				},
				[]columnAlignment{alignLeft, alignRight},
			)+"\n\n")

			totals, err := store.IngestTotals(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out, renderTable(
				[]string{"INGEST", "TOTAL"},
				[][]string{
					{"Cycles", fmt.Sprintf("%d", totals.Cycles)},
					{"Added", fmt.Sprintf("%d", totals.Added)},
					{"Duplicate names", fmt.Sprintf("%d", totals.DuplicateName)},
					{"Rejected extensions", fmt.Sprintf("%d", totals.RejectedExtension)},
					{"Failed", fmt.Sprintf("%d", totals.Failed)},
				},
				[]columnAlignment{alignLeft, alignRight},
			)+"\n\n")

			runs, err := store.RecentCrawls(cmd.Context(), crawlLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No crawl passes recorded yet.")
			} else {
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						run.Duration.Round(summaryRounding).String(),
						fmt.Sprintf("%d", run.Found),
						fmt.Sprintf("%d", run.Processed),
						fmt.Sprintf("%d", run.SkippedDuplicate),
						fmt.Sprintf("%d", run.Failed),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"STARTED", "DURATION", "FOUND", "PROCESSED", "DUPLICATES", "FAILED"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
				)+"\n\n")
			}

			rows := make([][]string, 0, 8)
			for _, result := range preflight.RunAll(cfg) {
				rows = append(rows, []string{result.Name, yesNo(result.Passed), result.Detail})
			}
			fmt.Fprint(out, renderTable(
				[]string{"CHECK", "OK", "DETAIL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			)+"\n")
			return nil
		},
	}

	cmd.Flags().IntVar(&crawlLimit, "crawls", 5, "Number of recent crawl passes to show")
	return cmd
}
