package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"refcat/internal/fetch"
	"refcat/internal/tabular"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var asTable bool
	var previewRows int

	cmd := &cobra.Command{
		Use:   "fetch <oid>[,<oid>...] [<oid>...]",
		Short: "Fetch dictionaries and write them as CSV files",
		Long: `Fetch resolves the latest published version for every identifier,
downloads the corresponding export, and writes one CSV file per dictionary
into the output directory. With --table and a single identifier the decoded
table is printed instead of written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oids := splitIdentifiers(args)
			if len(oids) == 0 {
				return errors.New("no identifiers given")
			}
			if asTable && len(oids) > 1 {
				return errors.New("--table requires exactly one identifier")
			}

			rt, err := ctx.buildRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			out := cmd.OutOrStdout()
			if asTable {
				outcome := rt.orchestrator.ProcessOne(cmd.Context(), oids[0], true)
				if outcome.Err != nil {
					return fmt.Errorf("fetch %s: %w", oids[0], outcome.Err)
				}
				fmt.Fprintf(out, "=== %s (version %s) ===\n", outcome.ShortName, outcome.Version)
				printTablePreview(out, outcome.Table, previewRows)
				return nil
			}

			outcomes := rt.orchestrator.Process(cmd.Context(), oids)
			printOutcomes(out, outcomes)

			failed := 0
			for _, outcome := range outcomes {
				if !outcome.Succeeded() {
					failed++
				}
			}
			if failed == len(outcomes) {
				return errors.New("all identifiers failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "Print the decoded table instead of writing a file (single identifier only)")
	cmd.Flags().IntVar(&previewRows, "limit", 20, "Maximum rows to print with --table (0 prints all)")
	return cmd
}

func printOutcomes(out io.Writer, outcomes []fetch.Outcome) {
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			fmt.Fprintf(out, "fetched %s (%s) version %s: %d rows -> %s\n",
				outcome.OID, outcome.ShortName, outcome.Version, outcome.RowCount, outcome.Path)
			continue
		}
		fmt.Fprintf(out, "failed  %s: %v\n", outcome.OID, outcome.Err)
	}
}

func printTablePreview(out io.Writer, tbl *tabular.Table, limit int) {
	rows := tbl.Rows
	truncated := 0
	if limit > 0 && len(rows) > limit {
		truncated = len(rows) - limit
		rows = rows[:limit]
	}
	renderTable(out, tbl.Columns, rows)
	if truncated > 0 {
		fmt.Fprintf(out, "... %d more rows\n", truncated)
	}
}
