package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/slice"
)

var writeClipboard = clipboard.WriteAll

func newSliceCmd() *cobra.Command {
	var paths, keep []string
	var output string
	var toClipboard bool
	cmd := &cobra.Command{
		Use:   "slice",
		Short: "Print a patch holding only the hunks named by --keep",
		Long: "Slice rebuilds the same subset patch commit would apply, without touching\n" +
			"the index. It goes to stdout unless --output or --clipboard is given.",
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
			ix, ok, err := e.loadIndex(cmd.Context(), cmd, paths)
			if err != nil || !ok {
				return err
			}
			e.warnUnmatched(ix, sel)
			out := cmd.OutOrStdout()

			switch {
			case output != "":
				n, size, err := e.stager.WriteFile(output, ix, sel)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %d hunk(s) to %s (%s)\n", n, output, humanize.Bytes(uint64(size)))
			case toClipboard:
				text, n, err := e.stager.Text(ix, sel)
				if err != nil {
					return err
				}
				if err := writeClipboard(text); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintf(out, "copied %d hunk(s) to the clipboard (%s)\n", n, humanize.Bytes(uint64(len(text))))
			default:
				if _, err := e.stager.Write(out, ix, sel); err != nil {
					return err
				}
			}
			return nil
		},
	}
	fs := cmd.Flags()
	addPathFlag(fs, &paths)
	addBaseFlag(fs)
	addKeepFlag(fs, &keep)
	fs.StringVarP(&output, "output", "o", "", "Write the patch to this file")
	fs.BoolVar(&toClipboard, "clipboard", false, "Copy the patch to the system clipboard")
	_ = cmd.MarkFlagRequired("keep")
	cmd.MarkFlagsMutuallyExclusive("output", "clipboard")
	return cmd
}
