// Package stage turns a hunk selection into a commit: it writes the
// reconstructed patch to a temp file, applies it to the index, checks that
// something was staged and commits.
package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/gitx"
	"github.com/interpretive-systems/hunkslice/internal/index"
	"github.com/interpretive-systems/hunkslice/internal/logging"
	"github.com/interpretive-systems/hunkslice/internal/patch"
	"github.com/interpretive-systems/hunkslice/internal/slice"
)

// TempPattern names reconstructed patch files.
const TempPattern = "hunkslice_*.patch"

// ErrEmptyDiff is returned by LoadIndex when the working tree has no changes.
var ErrEmptyDiff = errors.New("empty diff, no hunks")

// Differ produces the working-tree diff.
type Differ interface {
	Diff(ctx context.Context, base string, paths []string) (string, error)
}

// Backend is the set of git operations the stager drives.
// *gitx.Client implements it.
type Backend interface {
	Differ
	ApplyCached(ctx context.Context, patchPath string) error
	HasStagedChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) (string, error)
	CachedDiff(ctx context.Context) (string, error)
}

// LoadIndex diffs the working tree against base and indexes its hunks.
func LoadIndex(ctx context.Context, d Differ, base string, paths []string) (index.Index, error) {
	text, err := d.Diff(ctx, base, paths)
	if err != nil {
		return nil, apperrors.BackendDiffFailed(commandOutput(err), err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDiff
	}
	set, err := patch.Parse(text)
	if err != nil {
		return nil, err
	}
	return index.Build(set), nil
}

// CommitRequest describes one partial commit.
type CommitRequest struct {
	Index     index.Index
	Selection slice.Selection
	Message   string
	KeepTemp  bool
}

// CommitResult reports what a successful commit did.
type CommitResult struct {
	Written      int
	PatchPath    string
	PatchBytes   int64
	Kept         bool
	CommitOutput string
	// CleanupErr is set when the temp file could not be removed.
	CleanupErr error
}

// Stager orchestrates partial commits against a Backend.
type Stager struct {
	backend Backend
	log     logging.Logger
	tempDir string
}

// New creates a Stager. A nil logger discards diagnostics.
func New(backend Backend, log logging.Logger) *Stager {
	if log == nil {
		log = logging.Nop()
	}
	return &Stager{backend: backend, log: log}
}

// SetTempDir sets where patch files are created. Empty means os.TempDir().
func (s *Stager) SetTempDir(dir string) {
	s.tempDir = dir
}

// Commit applies the selected hunks to the index and commits them.
//
// The patch file is kept when apply fails so it can be inspected, and when
// req.KeepTemp is set. A failed commit leaves the applied changes staged.
func (s *Stager) Commit(ctx context.Context, req CommitRequest) (CommitResult, error) {
	var res CommitResult
	if len(req.Selection) == 0 {
		return res, apperrors.EmptySelection("")
	}
	if strings.TrimSpace(req.Message) == "" {
		return res, apperrors.CommitEmptyMessage()
	}

	path, n, size, err := s.writeTemp(req.Index, req.Selection)
	if err != nil {
		return res, err
	}
	res.PatchPath = path
	res.PatchBytes = size
	res.Written = n
	s.log.Debug("wrote patch", "path", path, "hunks", n, "bytes", size)

	if n == 0 {
		os.Remove(path)
		res.PatchPath = ""
		return res, apperrors.EmptySelection("no selected hunk ids matched")
	}

	if err := s.backend.ApplyCached(ctx, path); err != nil {
		res.Kept = true
		return res, apperrors.BackendApplyFailed(path, commandOutput(err), err)
	}

	staged, err := s.backend.HasStagedChanges(ctx)
	if err != nil {
		s.cleanup(&res, req.KeepTemp)
		return res, fmt.Errorf("check staged changes: %w", err)
	}
	if !staged {
		s.cleanup(&res, req.KeepTemp)
		return res, apperrors.EmptyStagingArea()
	}

	out, err := s.backend.Commit(ctx, req.Message)
	if err != nil {
		s.cleanup(&res, req.KeepTemp)
		return res, apperrors.BackendCommitFailed(commandOutput(err), err)
	}
	res.CommitOutput = out
	s.cleanup(&res, req.KeepTemp)
	return res, nil
}

// Text reconstructs the selection. An empty or fully unmatched selection is
// an error.
func (s *Stager) Text(ix index.Index, sel slice.Selection) (string, int, error) {
	if len(sel) == 0 {
		return "", 0, apperrors.EmptySelection("")
	}
	text, n := slice.Text(ix, sel)
	if n == 0 {
		return "", 0, apperrors.EmptySelection("no selected hunk ids matched")
	}
	return text, n, nil
}

// Write reconstructs the selection into w and returns the hunk count.
// Nothing is written when the selection is rejected.
func (s *Stager) Write(w io.Writer, ix index.Index, sel slice.Selection) (int, error) {
	text, n, err := s.Text(ix, sel)
	if err != nil {
		return 0, err
	}
	if _, err := io.WriteString(w, text); err != nil {
		return 0, fmt.Errorf("write patch: %w", err)
	}
	return n, nil
}

// WriteFile reconstructs the selection into the file at path and returns
// the hunk count and file size.
func (s *Stager) WriteFile(path string, ix index.Index, sel slice.Selection) (int, int64, error) {
	text, n, err := s.Text(ix, sel)
	if err != nil {
		return 0, 0, err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return 0, 0, fmt.Errorf("write patch: %w", err)
	}
	s.log.Debug("wrote patch", "path", path, "hunks", n)
	return n, int64(len(text)), nil
}

// Staged returns the diff of the index against HEAD.
func (s *Stager) Staged(ctx context.Context) (string, error) {
	out, err := s.backend.CachedDiff(ctx)
	if err != nil {
		return "", apperrors.BackendDiffFailed(commandOutput(err), err)
	}
	return out, nil
}

func (s *Stager) writeTemp(ix index.Index, sel slice.Selection) (string, int, int64, error) {
	f, err := os.CreateTemp(s.tempDir, TempPattern)
	if err != nil {
		return "", 0, 0, fmt.Errorf("create patch file: %w", err)
	}
	path := f.Name()
	n, err := slice.Reconstruct(f, ix, sel)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, 0, fmt.Errorf("write patch file: %w", err)
	}
	info, statErr := f.Stat()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", 0, 0, fmt.Errorf("close patch file: %w", err)
	}
	var size int64
	if statErr == nil {
		size = info.Size()
	}
	return path, n, size, nil
}

func (s *Stager) cleanup(res *CommitResult, keep bool) {
	if keep {
		res.Kept = true
		return
	}
	if err := os.Remove(res.PatchPath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove patch file", "path", res.PatchPath, "err", err)
		res.CleanupErr = err
		res.Kept = true
	}
}

// commandOutput returns git's verbatim output when err came from a git
// invocation, otherwise the error text.
func commandOutput(err error) string {
	var cmdErr *gitx.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Result.Output()
	}
	return err.Error()
}
