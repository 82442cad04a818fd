package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/interpretive-systems/hunkslice/internal/config"
	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/gitx"
	"github.com/interpretive-systems/hunkslice/internal/index"
	"github.com/interpretive-systems/hunkslice/internal/logging"
	"github.com/interpretive-systems/hunkslice/internal/prefs"
	"github.com/interpretive-systems/hunkslice/internal/slice"
	"github.com/interpretive-systems/hunkslice/internal/stage"
)

// env is what every command needs once flags are parsed.
type env struct {
	cfg    *config.Config
	log    logging.Logger
	git    *gitx.Client
	stager *stage.Stager
}

// setup resolves the repository and merges configuration:
// defaults < config file < git config < flags.
func setup(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	cfg, err := config.Load(mustGetStringFlag(cmd, "config"))
	if err != nil {
		return nil, err
	}

	runner := newRunner()
	root, err := gitx.RepoRoot(ctx, runner, mustGetStringFlag(cmd, "repo"))
	if err != nil {
		return nil, fmt.Errorf("not a git repo: %w", err)
	}
	client := gitx.New(runner, root)
	prefs.Load(ctx, client).Apply(cfg)

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.ConfigInvalid("invalid options", err)
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, apperrors.ConfigInvalid("invalid logging options", err)
	}
	log.Debug("repository resolved", "root", root, "base", cfg.Base)

	return &env{
		cfg:    cfg,
		log:    log,
		git:    client,
		stager: stage.New(client, log),
	}, nil
}

// applyFlags copies explicitly set flags over cfg. Flags a command does not
// define are skipped.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}
	if changed("log-level") {
		cfg.LogLevel, err = fs.GetString("log-level")
	}
	if err == nil && changed("base") {
		cfg.Base, err = fs.GetString("base")
	}
	if err == nil && changed("count") {
		cfg.Count, err = fs.GetInt("count")
	}
	if err == nil && changed("color") {
		cfg.Color, err = fs.GetString("color")
	}
	if err == nil && changed("keep-temp") {
		cfg.KeepTemp, err = fs.GetBool("keep-temp")
	}
	return err
}

func addPathFlag(fs *pflag.FlagSet, paths *[]string) {
	fs.StringArrayVarP(paths, "path", "P", nil, "Limit the diff to path (repeatable; default: whole repository)")
}

func addBaseFlag(fs *pflag.FlagSet) {
	fs.String("base", config.DefaultBase, "Revision to diff the working tree against")
}

func addKeepFlag(fs *pflag.FlagSet, ids *[]string) {
	fs.StringArrayVarP(ids, "keep", "k", nil, "Hunk id to keep, e.g. src/app.py:42 (repeatable)")
}

// loadIndex diffs the repository and indexes it. ok is false when the diff
// was empty; the caller should then stop without error.
func (e *env) loadIndex(ctx context.Context, cmd *cobra.Command, paths []string) (index.Index, bool, error) {
	ix, err := stage.LoadIndex(ctx, e.git, e.cfg.Base, paths)
	if errors.Is(err, stage.ErrEmptyDiff) {
		fmt.Fprintln(cmd.OutOrStdout(), stage.ErrEmptyDiff.Error())
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e.log.Debug("indexed diff", "hunks", len(ix))
	return ix, true, nil
}

// warnUnmatched logs selected ids that name no hunk.
func (e *env) warnUnmatched(ix index.Index, sel slice.Selection) {
	if um := slice.Unmatched(ix, sel); len(um) > 0 {
		e.log.Warn("ignoring unmatched hunk ids", "ids", strings.Join(um, ","))
	}
}
