package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the processed-content ledger",
	}

	ledgerCmd.AddCommand(newLedgerStatsCommand(ctx))
	ledgerCmd.AddCommand(newLedgerListCommand(ctx))

	return ledgerCmd
}

func newLedgerStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tracker, err := ctx.openLedger(nil)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer tracker.Close()

			stats := tracker.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ledger: %s\n", cfg.LedgerPath())
			fmt.Fprintf(out, "Records: %d\n", stats.TotalRecords)
			fmt.Fprintf(out, "Unique hashes: %d\n", stats.UniqueHashes)
			fmt.Fprintf(out, "Duplicate names: %d\n", stats.DuplicateNameEntries)
			return nil
		},
	}
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger records, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := ctx.openLedger(nil)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer tracker.Close()

			records, err := tracker.Records()
			if err != nil {
				return fmt.Errorf("read ledger records: %w", err)
			}
			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Ledger is empty.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.ProcessedAt.Local().Format("2006-01-02 15:04:05"),
					shortHash(record.ContentHash),
					displayTitle(record.OriginalFilename),
					record.OriginalPath,
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"PROCESSED", "HASH", "TITLE", "ORIGINAL PATH"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			)+"\n")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the most recent N records")
	return cmd
}

var titleCaser = cases.Title(language.English)

// displayTitle turns a stored filename into a readable title: the extension
// is dropped and separator characters become spaces.
func displayTitle(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return filename
	}
	return titleCaser.String(base)
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
