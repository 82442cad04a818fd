package cli

import (
	"github.com/spf13/cobra"

	"github.com/interpretive-systems/hunkslice/internal/config"
	"github.com/interpretive-systems/hunkslice/internal/pager"
)

func newListCmd() *cobra.Command {
	var paths []string
	var start int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Page through hunk thumbnails",
		Long: "List prints a short thumbnail of each hunk in the working-tree diff,\n" +
			"a page at a time, prefixed by the id to pass to commit or slice.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			ix, ok, err := e.loadIndex(cmd.Context(), cmd, paths)
			if err != nil || !ok {
				return err
			}
			mode, err := pager.ParseColorMode(e.cfg.Color)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pager.NewRenderer(out, mode).Render(pager.WriterSink{W: out}, pager.Page(ix, start, e.cfg.Count))
			return nil
		},
	}
	fs := cmd.Flags()
	addPathFlag(fs, &paths)
	addBaseFlag(fs)
	fs.IntVarP(&start, "start", "s", 1, "1-based position of the first hunk to show")
	fs.IntP("count", "c", config.DefaultCount, "Number of hunks to show")
	fs.String("color", string(pager.ColorAuto), "Style thumbnails: auto, always or never")
	fs.Lookup("color").NoOptDefVal = string(pager.ColorAlways)
	return cmd
}
