package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/interpretive-systems/hunkslice/internal/gitx"
	"github.com/interpretive-systems/hunkslice/internal/tui"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// Seams for tests.
var (
	newRunner = func() gitx.Runner { return gitx.NewExecRunner("") }
	runPicker = tui.Run
)

// Execute runs the hunkslice command tree.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hunkslice",
		Short: "Address diff hunks by id and commit a chosen subset",
		Long: "hunkslice: page through the hunks of your working-tree diff, name them by\n" +
			"path:line ids and commit exactly the ones you keep.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("repo", "r", ".", "Path to repository root (default: current dir)")
	root.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/hunkslice/config.toml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newListCmd(),
		newCommitCmd(),
		newSliceCmd(),
		newStagedCmd(),
		newPickCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hunkslice version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hunkslice %s\n", Version)
		},
	}
}

func mustGetStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flag error:", err)
		os.Exit(2)
	}
	return v
}
