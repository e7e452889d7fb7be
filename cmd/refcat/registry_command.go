package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"refcat/internal/registry"
)

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "Show the identifier-to-name registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entries, err := registry.Load(cfg.Output.RegistryPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "No registry file yet; run a fetch first.")
					return nil
				}
				return err
			}

			oids := make([]string, 0, len(entries))
			for oid := range entries {
				oids = append(oids, oid)
			}
			sort.Strings(oids)

			rows := make([][]string, 0, len(oids))
			for _, oid := range oids {
				rows = append(rows, []string{oid, entries[oid]})
			}
			renderTable(cmd.OutOrStdout(), []string{"OID", "Name"}, rows)
			return nil
		},
	}
}
