package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/index"
	"github.com/interpretive-systems/hunkslice/internal/patch"
)

const sampleDiff = `diff --git a/a.py b/a.py
--- a/a.py
+++ b/a.py
@@ -10,2 +10,3 @@ def f():
 a
+b
 c
diff --git a/b.py b/b.py
--- a/b.py
+++ b/b.py
@@ -5 +5 @@
-x
+y
@@ -5 +5 @@
-p
+q
`

func sampleIndex(t *testing.T) index.Index {
	t.Helper()
	set, err := patch.Parse(sampleDiff)
	require.NoError(t, err)
	return index.Build(set)
}

func baseModelForTest(t *testing.T, commit CommitFunc) model {
	t.Helper()
	m := newModel(Options{Index: sampleIndex(t), Theme: darkTheme(), Commit: commit})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return next.(model)
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(model)
	}
	return m, cmd
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(model)
	}
	return m
}

func TestView_ListsHunksAndPreview(t *testing.T) {
	m := baseModelForTest(t, nil)
	plain := ansi.Strip(m.View())

	require.True(t, strings.HasPrefix(plain, "Hunks | a.py:10 (1/3)"), "header: %q", strings.SplitN(plain, "\n", 2)[0])
	require.Contains(t, plain, "> [ ] a.py:10 +1 -0")
	require.Contains(t, plain, "[ ] b.py:5:2 +1 -1")
	require.Contains(t, plain, "@@ -10,2 +10,3 @@ def f():")
	require.Contains(t, plain, "+ b")
	require.Contains(t, plain, "selected 0/3")
}

func TestView_InlinePreview(t *testing.T) {
	m := baseModelForTest(t, nil)
	m, _ = press(t, m, "j", "s")
	plain := ansi.Strip(m.View())
	require.Contains(t, plain, "Hunks | b.py:5 (2/3)")
	require.Contains(t, plain, "- x")
	require.Contains(t, plain, "+ y")
}

func TestToggleSelection(t *testing.T) {
	m := baseModelForTest(t, nil)
	m, _ = press(t, m, "j", "j", " ")
	require.Equal(t, []string{"b.py:5:2"}, m.selectedIDs())

	m, _ = press(t, m, "a")
	require.Equal(t, []string{"a.py:10", "b.py:5", "b.py:5:2"}, m.selectedIDs())
	m, _ = press(t, m, "a")
	require.Empty(t, m.selectedIDs())
}

func TestCursorClamps(t *testing.T) {
	m := baseModelForTest(t, nil)
	m, _ = press(t, m, "k", "k")
	require.Equal(t, 0, m.cursor)
	m, _ = press(t, m, "G", "j")
	require.Equal(t, 2, m.cursor)
	m, _ = press(t, m, "g")
	require.Equal(t, 0, m.cursor)
}

func TestCommitRequiresSelection(t *testing.T) {
	m := baseModelForTest(t, nil)
	m, _ = press(t, m, "c")
	require.Equal(t, stepBrowse, m.step)
	require.Contains(t, ansi.Strip(m.View()), "no hunks selected")
}

func TestCommitFlow(t *testing.T) {
	var gotIDs []string
	var gotMsg string
	commit := func(ids []string, message string) (string, error) {
		gotIDs, gotMsg = ids, message
		return "abc1234 partial", nil
	}
	m := baseModelForTest(t, commit)
	m, _ = press(t, m, "down", " ", "c")
	require.Equal(t, stepMessage, m.step)

	m, _ = press(t, m, "i")
	m = typeText(t, m, "partial")
	m, _ = press(t, m, "enter")
	require.Equal(t, stepConfirm, m.step)
	plain := ansi.Strip(m.View())
	require.Contains(t, plain, "Hunks: b.py:5")
	require.Contains(t, plain, "Message: partial")

	m, cmd := press(t, m, "y")
	require.True(t, m.running)
	require.NotNil(t, cmd)

	next, quit := m.Update(cmd())
	m = next.(model)
	require.Equal(t, []string{"b.py:5"}, gotIDs)
	require.Equal(t, "partial", gotMsg)
	require.True(t, m.outcome.Committed)
	require.Equal(t, "abc1234 partial", m.outcome.Summary)
	require.NotNil(t, quit)
}

func TestCommitEmptyMessage(t *testing.T) {
	called := false
	m := baseModelForTest(t, func([]string, string) (string, error) {
		called = true
		return "", nil
	})
	m, _ = press(t, m, " ", "c", "enter", "y")
	require.False(t, called)
	require.Equal(t, "commit message cannot be empty", m.err)
}

func TestCommitFailureStaysOpen(t *testing.T) {
	m := baseModelForTest(t, func([]string, string) (string, error) {
		return "", apperrors.BackendApplyFailed("/tmp/hunkslice_1.patch", "error: patch does not apply", errors.New("exit 1"))
	})
	m, _ = press(t, m, " ", "c", "i")
	m = typeText(t, m, "msg")
	m, cmd := press(t, m, "enter", "enter")
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(model)
	require.False(t, m.outcome.Committed)
	require.False(t, m.running)
	plain := ansi.Strip(m.View())
	require.Contains(t, plain, "Error: git apply --cached failed: error: patch does not apply")
}

func TestBackFromMessage(t *testing.T) {
	m := baseModelForTest(t, nil)
	m, _ = press(t, m, " ", "c", "b")
	require.Equal(t, stepBrowse, m.step)
	m, _ = press(t, m, "c", "esc")
	require.Equal(t, stepBrowse, m.step)
}

func TestPreselected(t *testing.T) {
	m := newModel(Options{Index: sampleIndex(t), Selected: []string{"b.py:5:2", "nope:1"}, LastCommit: "abc1234 init"})
	require.Equal(t, []string{"b.py:5:2"}, m.selectedIDs())
	require.Equal(t, darkTheme(), m.theme)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	plain := ansi.Strip(next.(model).View())
	require.Contains(t, plain, "last: abc1234 init")
	require.Contains(t, plain, "selected 1/3")
}

func TestSearchJumpsToMatch(t *testing.T) {
	m := baseModelForTest(t, nil)
	m, _ = press(t, m, "/")
	require.True(t, m.search.active)

	m = typeText(t, m, "+Q")
	require.Equal(t, 2, m.cursor)
	plain := ansi.Strip(m.View())
	require.Contains(t, plain, "/ +Q")
	require.Contains(t, plain, "1/1")

	m, _ = press(t, m, "esc")
	require.False(t, m.search.active)
	require.Equal(t, 2, m.cursor)
}

func TestSearchCyclesMatches(t *testing.T) {
	m := baseModelForTest(t, nil)
	m, _ = press(t, m, "/")
	m = typeText(t, m, "b.py")
	require.Equal(t, 1, m.cursor)
	m, _ = press(t, m, "enter")
	require.Equal(t, 2, m.cursor)
	m, _ = press(t, m, "enter")
	require.Equal(t, 1, m.cursor)
}
