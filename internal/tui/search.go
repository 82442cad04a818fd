package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/hunkslice/internal/index"
)

// search finds hunks whose id or body contains a query, case-insensitively.
type search struct {
	query    string
	matches  []int // entry positions with matches
	current  int
	input    textinput.Model
	active   bool
	haystack []string
}

func newSearch(entries index.Index) search {
	ti := textinput.New()
	ti.Placeholder = "Search hunks"
	ti.Prompt = "/ "
	ti.CharLimit = 0

	hay := make([]string, len(entries))
	for i, e := range entries {
		hay[i] = strings.ToLower(e.ID + "\n" + e.Hunk.String())
	}
	return search{input: ti, haystack: hay}
}

func (s *search) activate() tea.Cmd {
	s.active = true
	return s.input.Focus()
}

func (s *search) deactivate() {
	s.active = false
	s.input.Blur()
}

// handleKey updates the query. It returns the entry to jump to, or -1.
func (s *search) handleKey(msg tea.KeyMsg) (int, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.deactivate()
		return -1, nil
	case "enter", "down":
		s.next()
		return s.target(), nil
	case "up":
		s.previous()
		return s.target(), nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.query = s.input.Value()
	s.recompute()
	return s.target(), cmd
}

func (s *search) recompute() {
	s.matches = s.matches[:0]
	s.current = 0
	if s.query == "" {
		return
	}
	q := strings.ToLower(s.query)
	for i, h := range s.haystack {
		if strings.Contains(h, q) {
			s.matches = append(s.matches, i)
		}
	}
}

func (s *search) next() {
	if len(s.matches) == 0 {
		return
	}
	s.current = (s.current + 1) % len(s.matches)
}

func (s *search) previous() {
	if len(s.matches) == 0 {
		return
	}
	s.current = (s.current - 1 + len(s.matches)) % len(s.matches)
}

func (s *search) target() int {
	if len(s.matches) == 0 {
		return -1
	}
	return s.matches[s.current]
}

func (s *search) view() string {
	counter := "0/0"
	if len(s.matches) > 0 {
		counter = fmt.Sprintf("%d/%d", s.current+1, len(s.matches))
	}
	return s.input.View() + "  " + counter
}
