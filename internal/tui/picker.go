// Package tui implements the interactive hunk picker: browse the indexed
// hunks, preview each one side by side, select a subset and commit it.
package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/index"
	"github.com/interpretive-systems/hunkslice/internal/slice"
)

// CommitFunc commits the hunks named by ids with message and returns a
// one-line summary for the status bar.
type CommitFunc func(ids []string, message string) (string, error)

// Options configures the picker.
type Options struct {
	Index  index.Index
	Theme  Theme
	Commit CommitFunc
	// Selected pre-selects hunk ids.
	Selected []string
	// LastCommit is the summary of HEAD, shown in the status bar.
	LastCommit string
}

// Outcome reports how the picker ended.
type Outcome struct {
	Committed bool
	Summary   string
}

type step int

const (
	stepBrowse step = iota
	stepMessage
	stepConfirm
)

// commitResultMsg is sent when the commit command completes.
type commitResultMsg struct {
	summary string
	err     error
}

type model struct {
	theme    Theme
	entries  index.Index
	selected map[string]bool
	cursor   int
	commit   CommitFunc

	sideBySide bool
	showHelp   bool
	width      int
	height     int
	leftWidth  int
	previewVP  viewport.Model
	status     StatusBar
	search     search

	step        step
	input       textinput.Model
	inputActive bool
	running     bool
	err         string
	outcome     Outcome
}

func newModel(opts Options) model {
	m := model{
		theme:      opts.Theme,
		entries:    opts.Index,
		selected:   make(map[string]bool, len(opts.Index)),
		commit:     opts.Commit,
		sideBySide: true,
	}
	if m.theme == (Theme{}) {
		m.theme = darkTheme()
	}
	sel := slice.NewSelection(opts.Selected...)
	for _, e := range m.entries {
		if sel.Has(e.ID) {
			m.selected[e.ID] = true
		}
	}
	ti := textinput.New()
	ti.Placeholder = "Commit message"
	ti.Prompt = "> "
	ti.CharLimit = 0
	m.input = ti
	m.search = newSearch(m.entries)
	m.status.SetLastCommit(opts.LastCommit)
	m.refreshStatus()
	return m
}

// Run starts the picker and blocks until it exits.
func Run(opts Options) (Outcome, error) {
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Outcome{}, err
	}
	if m, ok := final.(model); ok {
		return m.outcome, nil
	}
	return Outcome{}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "h", "esc":
				m.showHelp = false
				m.recalcViewport()
				return m, nil
			}
			return m, nil
		}
		if m.search.active && m.step == stepBrowse {
			target, cmd := m.search.handleKey(msg)
			if target >= 0 {
				m.moveCursor(target - m.cursor)
			}
			m.recalcViewport()
			return m, cmd
		}
		switch m.step {
		case stepMessage:
			return m.handleMessageKeys(msg)
		case stepConfirm:
			return m.handleConfirmKeys(msg)
		}
		return m.handleBrowseKeys(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.leftWidth == 0 {
			m.leftWidth = m.width / 3
			if m.leftWidth < 24 {
				m.leftWidth = 24
			}
		}
		m.recalcViewport()
		return m, nil
	case commitResultMsg:
		m.running = false
		if msg.err != nil {
			m.err = strings.ReplaceAll(apperrors.GetMessage(msg.err), "\n", " ")
			m.recalcViewport()
			return m, nil
		}
		m.outcome = Outcome{Committed: true, Summary: msg.summary}
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleBrowseKeys(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "h":
		m.showHelp = true
		m.recalcViewport()
		return m, nil
	case "/":
		cmd := m.search.activate()
		m.recalcViewport()
		return m, cmd
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "g":
		m.moveCursor(-len(m.entries))
		return m, nil
	case "G":
		m.moveCursor(len(m.entries))
		return m, nil
	case " ", "space", "x":
		if len(m.entries) > 0 {
			id := m.entries[m.cursor].ID
			m.selected[id] = !m.selected[id]
			m.refreshStatus()
		}
	case "a":
		all := len(m.entries) > 0
		for _, e := range m.entries {
			if !m.selected[e.ID] {
				all = false
				break
			}
		}
		for _, e := range m.entries {
			m.selected[e.ID] = !all
		}
		m.refreshStatus()
	case "s":
		m.sideBySide = !m.sideBySide
		m.recalcViewport()
		return m, nil
	case "<", "H":
		m.resizeLeft(-2)
		m.recalcViewport()
		return m, nil
	case ">", "L":
		m.resizeLeft(2)
		m.recalcViewport()
		return m, nil
	case "pgdown":
		m.previewVP.ViewDown()
	case "pgup":
		m.previewVP.ViewUp()
	case "J", "ctrl+d":
		m.previewVP.HalfViewDown()
	case "K", "ctrl+u":
		m.previewVP.HalfViewUp()
	case "ctrl+e":
		m.previewVP.LineDown(1)
	case "ctrl+y":
		m.previewVP.LineUp(1)
	case "c", "enter":
		if len(m.selectedIDs()) == 0 {
			m.status.SetMessage("no hunks selected")
			return m, nil
		}
		m.status.SetMessage("")
		m.step = stepMessage
		m.err = ""
		m.recalcViewport()
		return m, nil
	}
	return m, nil
}

func (m model) handleMessageKeys(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		if m.inputActive {
			m.inputActive = false
			m.input.Blur()
			return m, nil
		}
		m.step = stepBrowse
		m.recalcViewport()
		return m, nil
	case "i":
		if !m.inputActive {
			m.inputActive = true
			cmd := m.input.Focus()
			return m, cmd
		}
	case "b":
		if !m.inputActive {
			m.step = stepBrowse
			m.recalcViewport()
			return m, nil
		}
	case "enter":
		m.inputActive = false
		m.input.Blur()
		m.step = stepConfirm
		m.err = ""
		m.recalcViewport()
		return m, nil
	}
	if m.inputActive {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(key)
		return m, cmd
	}
	return m, nil
}

func (m model) handleConfirmKeys(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	switch key.String() {
	case "esc":
		m.step = stepBrowse
		m.err = ""
		m.recalcViewport()
		return m, nil
	case "b":
		m.step = stepMessage
		m.recalcViewport()
		return m, nil
	case "y", "enter":
		ids := m.selectedIDs()
		if len(ids) == 0 {
			m.err = "no hunks selected"
			return m, nil
		}
		msg := strings.TrimSpace(m.input.Value())
		if msg == "" {
			m.err = "commit message cannot be empty"
			return m, nil
		}
		m.err = ""
		m.running = true
		return m, runCommit(m.commit, ids, msg)
	}
	return m, nil
}

func runCommit(fn CommitFunc, ids []string, message string) tea.Cmd {
	return func() tea.Msg {
		if fn == nil {
			return commitResultMsg{err: errors.New("committing is not available")}
		}
		summary, err := fn(ids, message)
		return commitResultMsg{summary: summary, err: err}
	}
}

// selectedIDs returns the selected ids in index order.
func (m model) selectedIDs() []string {
	var out []string
	for _, e := range m.entries {
		if m.selected[e.ID] {
			out = append(out, e.ID)
		}
	}
	return out
}

func (m *model) moveCursor(delta int) {
	if len(m.entries) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 {
		next = 0
	}
	if next > len(m.entries)-1 {
		next = len(m.entries) - 1
	}
	if next == m.cursor {
		return
	}
	m.cursor = next
	m.previewVP.GotoTop()
	m.recalcViewport()
}

func (m *model) resizeLeft(delta int) {
	if m.leftWidth == 0 {
		m.leftWidth = m.width / 3
	}
	m.leftWidth += delta
	maxLeft := m.width - 20
	if maxLeft < 20 {
		maxLeft = 20
	}
	if m.leftWidth > maxLeft {
		m.leftWidth = maxLeft
	}
	if m.leftWidth < 20 {
		m.leftWidth = 20
	}
}

func (m *model) refreshStatus() {
	text, _ := slice.Text(m.entries, slice.NewSelection(m.selectedIDs()...))
	m.status.SetSelection(len(m.selectedIDs()), len(m.entries), len(text))
}
