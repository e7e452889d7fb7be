package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"refcat/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetch outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("history is disabled in configuration")
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				detail := rec.OutputPath
				if rec.Status == history.StatusFailed {
					detail = rec.Detail
				}
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.OID,
					rec.ShortName,
					rec.Version,
					rec.Status,
					strconv.Itoa(rec.RowCount),
					detail,
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"When", "OID", "Name", "Version", "Status", "Rows", "Detail"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum records to show")
	return cmd
}
