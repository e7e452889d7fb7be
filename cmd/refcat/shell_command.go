package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newShellCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Fetch dictionaries interactively",
		Long: `Shell reads comma-separated identifiers from standard input in a loop and
runs a batch fetch for each line. Resolved metadata is cached for the life of
the session, so repeating an identifier issues no further lookups. Enter
"exit" to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.buildRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			out := cmd.OutOrStdout()
			interactive := stdoutIsTerminal()
			scanner := bufio.NewScanner(cmd.InOrStdin())

			for {
				if interactive {
					fmt.Fprint(out, "refcat> ")
				}
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if strings.EqualFold(line, "exit") {
					break
				}

				oids := splitIdentifiers([]string{line})
				if len(oids) == 0 {
					continue
				}
				outcomes := rt.orchestrator.Process(cmd.Context(), oids)
				printOutcomes(out, outcomes)
			}
			return scanner.Err()
		},
	}
}
