package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/spf13/cobra"
)

func resultCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "result <session-id>",
		Short: "Print the result of a finished session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := g.transport().Result(cmd.Context(), args[0])
			switch {
			case errors.Is(err, domain.ErrResultNotReady):
				fmt.Fprintln(cmd.OutOrStdout(), warnMsg("session %s is still running", args[0]))
				return nil
			case err != nil:
				return fmt.Errorf("fetch result: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderResult(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON result")
	return cmd
}
