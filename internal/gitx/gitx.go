// Package gitx wraps the handful of git commands hunkslice needs behind a
// Runner, so tests can swap the git binary for an in-memory fake.
package gitx

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CommandError reports a git invocation that exited non-zero.
type CommandError struct {
	Args   []string
	Result Result
}

func (e *CommandError) Error() string {
	name := "git"
	if len(e.Args) > 0 {
		name += " " + e.Args[0]
	}
	out := strings.TrimSpace(e.Result.Output())
	if out == "" {
		return fmt.Sprintf("%s: exit status %d", name, e.Result.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", name, e.Result.ExitCode, out)
}

// Client runs git commands inside one repository.
type Client struct {
	runner Runner
	root   string
}

// New creates a client for the repository at root.
func New(runner Runner, root string) *Client {
	return &Client{runner: runner, root: root}
}

// Root returns the repository root the client runs in.
func (c *Client) Root() string {
	return c.root
}

// RepoRoot resolves the git repository root from a given path (or current dir).
func RepoRoot(ctx context.Context, runner Runner, path string) (string, error) {
	if path == "" {
		path = "."
	}
	res, err := runner.Run(ctx, "", nil, "-C", path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("rev-parse: %w", err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("rev-parse: %w", &CommandError{Args: []string{"rev-parse"}, Result: res})
	}
	root := strings.TrimSpace(res.Stdout)
	if root == "" {
		return "", errors.New("empty git root")
	}
	return root, nil
}

// DiffArgs returns the arguments used to diff the working tree against base.
// Colour, external diff drivers and custom prefixes are pinned off so the
// output always parses the same way.
func DiffArgs(base string, paths []string) []string {
	if strings.TrimSpace(base) == "" {
		base = "HEAD"
	}
	args := []string{"diff", "--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/", base}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	return args
}

// Diff returns the unified diff between base and the working tree, covering
// both staged and unstaged changes, optionally limited to paths.
func (c *Client) Diff(ctx context.Context, base string, paths []string) (string, error) {
	return c.output(ctx, DiffArgs(base, paths)...)
}

// ApplyCached applies the patch file at patchPath to the index only.
func (c *Client) ApplyCached(ctx context.Context, patchPath string) error {
	_, err := c.output(ctx, "apply", "--cached", patchPath)
	return err
}

// CachedDiff returns the diff of the index against HEAD.
func (c *Client) CachedDiff(ctx context.Context) (string, error) {
	return c.output(ctx, "diff", "--cached", "--no-color", "--no-ext-diff")
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges(ctx context.Context) (bool, error) {
	args := []string{"diff", "--cached", "--quiet"}
	res, err := c.runner.Run(ctx, c.root, nil, args...)
	if err != nil {
		return false, fmt.Errorf("git diff --cached: %w", err)
	}
	switch res.ExitCode {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &CommandError{Args: args, Result: res}
	}
}

// Commit performs a git commit with the given message and returns git's
// summary output. Callers reject empty messages first.
func (c *Client) Commit(ctx context.Context, message string) (string, error) {
	out, err := c.output(ctx, "commit", "-m", message)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ConfigGet reads a git config value. ok is false when the key is unset.
func (c *Client) ConfigGet(ctx context.Context, key string) (string, bool) {
	res, err := c.runner.Run(ctx, c.root, nil, "config", "--get", key)
	if err != nil || res.ExitCode != 0 {
		return "", false
	}
	return strings.TrimSpace(res.Stdout), true
}

// LastCommitSummary returns short hash and subject of last commit.
func (c *Client) LastCommitSummary(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "log", "-1", "--pretty=format:%h %s")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	res, err := c.runner.Run(ctx, c.root, nil, args...)
	if err != nil {
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	if res.ExitCode != 0 {
		return "", &CommandError{Args: args, Result: res}
	}
	return res.Stdout, nil
}
