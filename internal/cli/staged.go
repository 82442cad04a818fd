package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStagedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "staged",
		Short: "Show what is currently staged (git diff --cached)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			diff, err := e.stager.Staged(cmd.Context())
			if err != nil {
				return err
			}
			if strings.TrimSpace(diff) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "staging area is empty")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}
