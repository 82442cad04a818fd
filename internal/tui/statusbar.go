package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// StatusBar renders the bottom line of the picker.
type StatusBar struct {
	selected   int
	total      int
	patchBytes int
	lastCommit string
	message    string
}

// SetSelection records how many hunks are selected and the size of the
// patch they would produce.
func (s *StatusBar) SetSelection(selected, total, patchBytes int) {
	s.selected = selected
	s.total = total
	s.patchBytes = patchBytes
}

// SetLastCommit updates the last commit summary.
func (s *StatusBar) SetLastCommit(summary string) {
	s.lastCommit = summary
}

// SetMessage shows a transient message on the left.
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
}

// Render renders the status bar at width columns.
func (s *StatusBar) Render(width int) string {
	leftText := "h: help"
	if s.message != "" {
		leftText = s.message
	}
	if s.lastCommit != "" {
		leftText += "  |  last: " + s.lastCommit
	}

	right := fmt.Sprintf("selected %d/%d", s.selected, s.total)
	if s.selected > 0 {
		right += " · " + humanize.Bytes(uint64(s.patchBytes))
	}
	leftStyled := lipgloss.NewStyle().Faint(true).Render(leftText)
	rightStyled := lipgloss.NewStyle().Faint(true).Render(right)

	// Right part stays visible
	rightW := lipgloss.Width(rightStyled)
	if rightW >= width {
		return ansi.Truncate(rightStyled, width, "…")
	}

	avail := width - rightW - 1
	leftRendered := leftStyled
	if lipgloss.Width(leftRendered) > avail {
		leftRendered = ansi.Truncate(leftRendered, avail, "…")
	} else if lipgloss.Width(leftRendered) < avail {
		leftRendered += strings.Repeat(" ", avail-lipgloss.Width(leftRendered))
	}
	return leftRendered + " " + rightStyled
}
