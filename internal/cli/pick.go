package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interpretive-systems/hunkslice/internal/index"
	"github.com/interpretive-systems/hunkslice/internal/slice"
	"github.com/interpretive-systems/hunkslice/internal/stage"
	"github.com/interpretive-systems/hunkslice/internal/tui"
)

func newPickCmd() *cobra.Command {
	var paths, keep []string
	var theme string
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose hunks interactively and commit them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ix, ok, err := e.loadIndex(ctx, cmd, paths)
			if err != nil || !ok {
				return err
			}
			// A repo without commits has no summary to show.
			last, _ := e.git.LastCommitSummary(ctx)
			outcome, err := runPicker(tui.Options{
				Index:      ix,
				Theme:      tui.LoadTheme(e.git.Root(), theme),
				Commit:     e.commitFunc(ctx, ix),
				Selected:   keep,
				LastCommit: last,
			})
			if err != nil {
				return fmt.Errorf("picker: %w", err)
			}
			if outcome.Committed {
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Summary)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	addPathFlag(fs, &paths)
	addBaseFlag(fs)
	addKeepFlag(fs, &keep)
	fs.StringVar(&theme, "theme", "dark", "Base colour theme: dark or light")
	fs.Bool("keep-temp", false, "Keep the reconstructed patch file")
	return cmd
}

// commitFunc adapts the stager to the picker's commit callback.
func (e *env) commitFunc(ctx context.Context, ix index.Index) tui.CommitFunc {
	return func(ids []string, message string) (string, error) {
		res, err := e.stager.Commit(ctx, stage.CommitRequest{
			Index:     ix,
			Selection: slice.NewSelection(ids...),
			Message:   message,
			KeepTemp:  e.cfg.KeepTemp,
		})
		if err != nil {
			return "", err
		}
		summary, err := e.git.LastCommitSummary(ctx)
		if err != nil {
			summary, _, _ = strings.Cut(res.CommitOutput, "\n")
		}
		if res.Kept && res.PatchPath != "" {
			summary += " (kept patch: " + res.PatchPath + ")"
		}
		return summary, nil
	}
}
