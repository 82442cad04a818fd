package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/slice"
	"github.com/interpretive-systems/hunkslice/internal/stage"
)

func newCommitCmd() *cobra.Command {
	var paths, keep []string
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit only the hunks named by --keep",
		Long: "Commit rebuilds a patch holding only the kept hunks, applies it to the\n" +
			"index with git apply --cached and commits it. Everything else stays in\n" +
			"the working tree.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := slice.NewSelection(keep...)
			if len(sel) == 0 {
				return apperrors.EmptySelection("only blank hunk ids given")
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ix, ok, err := e.loadIndex(ctx, cmd, paths)
			if err != nil || !ok {
				return err
			}
			e.warnUnmatched(ix, sel)

			res, err := e.stager.Commit(ctx, stage.CommitRequest{
				Index:     ix,
				Selection: sel,
				Message:   message,
				KeepTemp:  e.cfg.KeepTemp,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "applied %d hunk(s) to the index (%s patch)\n", res.Written, humanize.Bytes(uint64(res.PatchBytes)))
			if res.CommitOutput != "" {
				fmt.Fprintln(out, res.CommitOutput)
			} else {
				fmt.Fprintln(out, "commit done")
			}
			switch {
			case res.CleanupErr != nil:
				fmt.Fprintf(out, "failed to remove patch, clean up manually: %s\n", res.PatchPath)
			case res.Kept:
				fmt.Fprintf(out, "kept patch: %s\n", res.PatchPath)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	addPathFlag(fs, &paths)
	addBaseFlag(fs)
	addKeepFlag(fs, &keep)
	fs.StringVarP(&message, "message", "m", "", "Commit message")
	fs.Bool("keep-temp", false, "Keep the reconstructed patch file and print its path")
	_ = cmd.MarkFlagRequired("keep")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
