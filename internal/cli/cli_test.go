package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/gitx"
	"github.com/interpretive-systems/hunkslice/internal/tui"
)

func numbered(n int, edit map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if s, ok := edit[i]; ok {
			b.WriteString(s + "\n")
			continue
		}
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

// initRepo creates a repo with one committed file and two separate
// working-tree changes: a.txt:1 and a.txt:25.
func initRepo(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	mustRun(t, dir, "git", "-c", "init.defaultBranch=main", "init", "-q")
	mustRun(t, dir, "git", "config", "user.email", "test@example.com")
	mustRun(t, dir, "git", "config", "user.name", "Test User")
	write(t, filepath.Join(dir, "a.txt"), numbered(30, nil))
	mustRun(t, dir, "git", "add", ".")
	mustRun(t, dir, "git", "commit", "-q", "-m", "init")
	write(t, filepath.Join(dir, "a.txt"), numbered(30, map[int]string{2: "top change", 28: "bottom change"}))
	return dir
}

func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(append([]string{"--repo", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

func TestList(t *testing.T) {
	dir := initRepo(t)
	out, _, err := execute(t, dir, "list", "--color=never")
	require.NoError(t, err)
	require.Contains(t, out, "[a.txt:1] a.txt:1 (+1 -1)\n")
	require.Contains(t, out, "  -line 2\n  +top change\n")
	require.Contains(t, out, "[a.txt:25] a.txt:25 (+1 -1)\n")
	require.Contains(t, out, "  ...\n")
	require.True(t, strings.HasSuffix(out, "-- showing 1-2 of 2 --\n"), out)
}

func TestList_Paging(t *testing.T) {
	dir := initRepo(t)
	out, _, err := execute(t, dir, "list", "--color=never", "-s", "2", "-c", "1")
	require.NoError(t, err)
	require.NotContains(t, out, "[a.txt:1]")
	require.Contains(t, out, "[a.txt:25]")
	require.Contains(t, out, "-- showing 2-2 of 2 --")

	out, _, err = execute(t, dir, "list", "--color=never", "-s", "9")
	require.NoError(t, err)
	require.Equal(t, "-- showing none of 2 (start 9) --\n", out)
}

func TestList_GitConfigCountAndFlagOverride(t *testing.T) {
	dir := initRepo(t)
	mustRun(t, dir, "git", "config", "hunkslice.count", "1")
	out, _, err := execute(t, dir, "list", "--color=never")
	require.NoError(t, err)
	require.Contains(t, out, "-- showing 1-1 of 2 --")

	out, _, err = execute(t, dir, "list", "--color=never", "-c", "5")
	require.NoError(t, err)
	require.Contains(t, out, "-- showing 1-2 of 2 --")
}

func TestList_ConfigFile(t *testing.T) {
	dir := initRepo(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	write(t, cfgPath, "count = 1\ncolor = \"never\"\n")
	out, _, err := execute(t, dir, "--config", cfgPath, "list")
	require.NoError(t, err)
	require.Contains(t, out, "-- showing 1-1 of 2 --")

	write(t, cfgPath, "count = 0\n")
	_, _, err = execute(t, dir, "--config", cfgPath, "list")
	require.True(t, apperrors.IsCode(err, apperrors.CodeConfigInvalid), "got %v", err)
}

func TestList_PathFilter(t *testing.T) {
	dir := initRepo(t)
	write(t, filepath.Join(dir, "b.txt"), "new\n")
	mustRun(t, dir, "git", "add", "b.txt")

	out, _, err := execute(t, dir, "list", "--color=never", "-P", "b.txt")
	require.NoError(t, err)
	require.Contains(t, out, "[b.txt:1] b.txt:1 (+1 -0)")
	require.NotContains(t, out, "a.txt")
}

func TestList_EmptyDiff(t *testing.T) {
	dir := initRepo(t)
	mustRun(t, dir, "git", "checkout", "--", "a.txt")
	out, _, err := execute(t, dir, "list")
	require.NoError(t, err)
	require.Equal(t, "empty diff, no hunks\n", out)
}

func TestList_BadBase(t *testing.T) {
	dir := initRepo(t)
	_, _, err := execute(t, dir, "list", "--base", "no-such-rev")
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackendDiffFailed), "got %v", err)
	require.Contains(t, apperrors.GetMessage(err), "no-such-rev")
}

func TestNotARepo(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, _, err := execute(t, t.TempDir(), "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a git repo")
}

func TestCommit(t *testing.T) {
	dir := initRepo(t)
	out, stderr, err := execute(t, dir, "commit", "-k", "a.txt:1", "-k", "nope:9", "-m", "top only", "--keep-temp")
	require.NoError(t, err)
	require.Contains(t, out, "applied 1 hunk(s) to the index")
	require.Contains(t, out, "top only")
	require.Contains(t, out, "kept patch: ")
	require.Contains(t, stderr, "ignoring unmatched hunk ids")
	require.Contains(t, stderr, "nope:9")

	kept := strings.TrimSpace(out[strings.Index(out, "kept patch: ")+len("kept patch: "):])
	require.FileExists(t, kept)
	t.Cleanup(func() { os.Remove(kept) })
	require.Contains(t, filepath.Base(kept), "hunkslice_")

	committed := mustRun(t, dir, "git", "show", "HEAD:a.txt")
	require.Contains(t, committed, "top change")
	require.NotContains(t, committed, "bottom change")

	out, _, err = execute(t, dir, "list", "--color=never")
	require.NoError(t, err)
	require.Contains(t, out, "+bottom change")
	require.Contains(t, out, "-- showing 1-1 of 1 --")
}

func TestCommit_NoMatchingIds(t *testing.T) {
	dir := initRepo(t)
	_, _, err := execute(t, dir, "commit", "-k", "zzz:1", "-m", "m")
	require.True(t, apperrors.IsCode(err, apperrors.CodeSelectionEmpty), "got %v", err)
	require.Equal(t, "", mustRun(t, dir, "git", "diff", "--cached"))
}

// countingRunner stands in for git and records every invocation.
type countingRunner struct {
	calls [][]string
}

func (r *countingRunner) Run(_ context.Context, _ string, _ io.Reader, args ...string) (gitx.Result, error) {
	r.calls = append(r.calls, args)
	return gitx.Result{ExitCode: 128, Stderr: "unexpected call"}, nil
}

func TestBlankKeepRejectedBeforeGit(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	r := &countingRunner{}
	orig := newRunner
	newRunner = func() gitx.Runner { return r }
	t.Cleanup(func() { newRunner = orig })

	for _, args := range [][]string{
		{"commit", "-k", "", "-m", "m"},
		{"commit", "-k", " ", "-k", "\t", "-m", "m"},
		{"slice", "-k", "  "},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := execute(t, t.TempDir(), args...)
			require.True(t, apperrors.IsCode(err, apperrors.CodeSelectionEmpty), "got %v", err)
		})
	}
	require.Empty(t, r.calls)
}

func TestCommit_RequiresKeep(t *testing.T) {
	dir := initRepo(t)
	_, _, err := execute(t, dir, "commit", "-m", "m")
	require.Error(t, err)
	require.Contains(t, err.Error(), "keep")
}

func TestSlice_Stdout(t *testing.T) {
	dir := initRepo(t)
	out, _, err := execute(t, dir, "slice", "-k", "a.txt:25")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "diff --git a/a.txt b/a.txt\n"), out)
	require.Contains(t, out, "+bottom change\n")
	require.NotContains(t, out, "top change")

	// The slice applies cleanly on its own.
	patchPath := filepath.Join(t.TempDir(), "s.patch")
	write(t, patchPath, out)
	mustRun(t, dir, "git", "apply", "--cached", "--check", patchPath)
}

func TestSlice_OutputFile(t *testing.T) {
	dir := initRepo(t)
	path := filepath.Join(t.TempDir(), "out.patch")
	out, _, err := execute(t, dir, "slice", "-k", "a.txt:1", "-o", path)
	require.NoError(t, err)
	require.Contains(t, out, "wrote 1 hunk(s) to "+path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "+top change\n")
}

func TestSlice_Clipboard(t *testing.T) {
	dir := initRepo(t)
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	out, _, err := execute(t, dir, "slice", "-k", "a.txt:1", "-k", "a.txt:25", "--clipboard")
	require.NoError(t, err)
	require.Contains(t, out, "copied 2 hunk(s) to the clipboard")
	require.Equal(t, 1, strings.Count(copied, "diff --git"))
	require.Equal(t, 2, strings.Count(copied, "\n@@ "))
}

func TestSlice_OutputAndClipboardExclusive(t *testing.T) {
	dir := initRepo(t)
	_, _, err := execute(t, dir, "slice", "-k", "a.txt:1", "-o", "x.patch", "--clipboard")
	require.Error(t, err)
}

func TestStaged(t *testing.T) {
	dir := initRepo(t)
	out, _, err := execute(t, dir, "staged")
	require.NoError(t, err)
	require.Equal(t, "staging area is empty\n", out)

	mustRun(t, dir, "git", "add", "a.txt")
	out, _, err = execute(t, dir, "staged")
	require.NoError(t, err)
	require.Contains(t, out, "+top change")
}

func TestPick(t *testing.T) {
	dir := initRepo(t)
	orig := runPicker
	t.Cleanup(func() { runPicker = orig })

	var gotIDs []string
	runPicker = func(opts tui.Options) (tui.Outcome, error) {
		gotIDs = opts.Index.IDs()
		summary, err := opts.Commit([]string{"a.txt:25"}, "bottom only")
		if err != nil {
			return tui.Outcome{}, err
		}
		return tui.Outcome{Committed: true, Summary: summary}, nil
	}

	out, _, err := execute(t, dir, "pick")
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt:1", "a.txt:25"}, gotIDs)
	require.Contains(t, out, "bottom only")
	require.Contains(t, mustRun(t, dir, "git", "show", "HEAD:a.txt"), "bottom change")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, ".", "version")
	require.NoError(t, err)
	require.Equal(t, "hunkslice dev\n", out)
}

func mustRun(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command %s %v failed: %v\n%s", name, args, err, string(out))
	}
	return string(out)
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
