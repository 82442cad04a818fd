package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/interpretive-systems/hunkslice/internal/diffview"
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	leftW, rightW := m.columnWidths()
	sep := m.theme.DividerText("│")

	top := fmt.Sprintf("Hunks | %s", m.topRightTitle())
	hr := m.theme.DividerText(strings.Repeat("─", m.width))

	overlay := m.overlayLines(m.width)
	contentHeight := m.contentHeight(len(overlay))

	leftLines := m.leftBodyLines(contentHeight)
	vp := m.previewVP
	vp.Width = rightW
	vp.Height = contentHeight
	rightLines := strings.Split(vp.View(), "\n")

	var b strings.Builder
	b.WriteString(padToWidth(top, m.width))
	b.WriteByte('\n')
	b.WriteString(hr)
	b.WriteByte('\n')
	for i := 0; i < contentHeight; i++ {
		l := strings.Repeat(" ", leftW)
		if i < len(leftLines) {
			l = padToWidth(leftLines[i], leftW)
		}
		var r string
		if i < len(rightLines) {
			r = rightLines[i]
		}
		b.WriteString(l)
		b.WriteString(sep)
		b.WriteString(padToWidth(r, rightW))
		if i < contentHeight-1 {
			b.WriteByte('\n')
		}
	}
	for _, line := range overlay {
		b.WriteByte('\n')
		b.WriteString(padToWidth(line, m.width))
	}
	b.WriteByte('\n')
	b.WriteString(m.theme.DividerText(strings.Repeat("─", m.width)))
	b.WriteByte('\n')
	b.WriteString(m.status.Render(m.width))
	return b.String()
}

func (m model) columnWidths() (int, int) {
	leftW := m.leftWidth
	if leftW < 20 {
		leftW = 20
	}
	rightW := m.width - leftW - 1 // vertical divider column
	if rightW < 1 {
		rightW = 1
	}
	return leftW, rightW
}

// contentHeight is what is left after the top bar, its rule, the bottom
// rule, the status bar and any overlay.
func (m model) contentHeight(overlayH int) int {
	h := m.height - 4 - overlayH
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) topRightTitle() string {
	if len(m.entries) == 0 {
		return "no hunks"
	}
	e := m.entries[m.cursor]
	return fmt.Sprintf("%s (%d/%d)", e.ID, m.cursor+1, len(m.entries))
}

// leftBodyLines renders the hunk list, scrolled so the cursor stays visible.
func (m model) leftBodyLines(max int) []string {
	if len(m.entries) == 0 {
		return []string{lipgloss.NewStyle().Faint(true).Render("No hunks")}
	}
	offset := 0
	if m.cursor >= max {
		offset = m.cursor - max + 1
	}
	lines := make([]string, 0, max)
	for i := offset; i < len(m.entries) && len(lines) < max; i++ {
		e := m.entries[i]
		cur := "  "
		if i == m.cursor {
			cur = "> "
		}
		mark := "[ ]"
		if m.selected[e.ID] {
			mark = m.theme.MarkText("[x]")
		}
		counts := m.theme.AddText(fmt.Sprintf("+%d", e.Hunk.Added())) + " " +
			m.theme.DelText(fmt.Sprintf("-%d", e.Hunk.Removed()))
		line := fmt.Sprintf("%s%s %s %s", cur, mark, e.ID, counts)
		if i == m.cursor {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m model) previewLines(width int) []string {
	if len(m.entries) == 0 {
		return nil
	}
	e := m.entries[m.cursor]
	rows := diffview.BuildRows(e.Hunk)
	lines := make([]string, 0, len(rows))
	if m.sideBySide {
		colsW := (width - 1) / 2
		if colsW < 10 {
			colsW = 10
		}
		mid := m.theme.DividerText("│")
		for _, r := range rows {
			switch r.Kind {
			case diffview.RowHunk:
				lines = append(lines, m.theme.MetaText(r.Meta))
			case diffview.RowMeta:
				lines = append(lines, lipgloss.NewStyle().Faint(true).Render(r.Meta))
			default:
				l := padToWidth(m.colorizeLeft(r), colsW)
				rr := padToWidth(m.colorizeRight(r), colsW)
				lines = append(lines, l+mid+rr)
			}
		}
		return lines
	}
	for _, r := range rows {
		switch r.Kind {
		case diffview.RowHunk:
			lines = append(lines, m.theme.MetaText(r.Meta))
		case diffview.RowMeta:
			lines = append(lines, lipgloss.NewStyle().Faint(true).Render(r.Meta))
		case diffview.RowContext:
			lines = append(lines, "  "+r.Left)
		case diffview.RowAdd:
			lines = append(lines, m.theme.AddText("+ "+r.Right))
		case diffview.RowDel:
			lines = append(lines, m.theme.DelText("- "+r.Left))
		case diffview.RowReplace:
			lines = append(lines, m.theme.DelText("- "+r.Left))
			lines = append(lines, m.theme.AddText("+ "+r.Right))
		}
	}
	return lines
}

func (m model) colorizeLeft(r diffview.Row) string {
	switch r.Kind {
	case diffview.RowDel, diffview.RowReplace:
		return m.theme.DelText("- " + r.Left)
	case diffview.RowContext:
		return "  " + r.Left
	}
	return ""
}

func (m model) colorizeRight(r diffview.Row) string {
	switch r.Kind {
	case diffview.RowAdd, diffview.RowReplace:
		return m.theme.AddText("+ " + r.Right)
	case diffview.RowContext:
		return "  " + r.Right
	}
	return ""
}

func (m model) overlayLines(width int) []string {
	var lines []string
	if m.showHelp {
		lines = append(lines, m.helpOverlayLines(width)...)
	}
	if m.search.active {
		lines = append(lines, m.theme.DividerText(strings.Repeat("─", width)), m.search.view())
	}
	switch m.step {
	case stepMessage:
		lines = append(lines, m.messageOverlayLines(width)...)
	case stepConfirm:
		lines = append(lines, m.confirmOverlayLines(width)...)
	}
	return lines
}

func (m model) helpOverlayLines(width int) []string {
	title := lipgloss.NewStyle().Bold(true).Render("Help — keys (h/esc: close, q: quit)")
	return []string{
		m.theme.DividerText(strings.Repeat("─", width)),
		title,
		"j/k, up/down   move between hunks      g/G   first/last hunk",
		"space, x       toggle hunk             a     toggle all",
		"c, enter       commit selected hunks   s     side-by-side / inline",
		"J/K, pgup/pgdn scroll preview          </>   resize list",
		"/              search ids and bodies   q     quit",
	}
}

func (m model) messageOverlayLines(width int) []string {
	mode := "action"
	escAction := "cancel"
	if m.inputActive {
		mode = "input"
		escAction = "leave input"
	}
	title := lipgloss.NewStyle().Bold(true).
		Render(fmt.Sprintf("Commit — Message (i: input, enter: continue, b: back, esc: %s) [%s]", escAction, mode))
	return []string{m.theme.DividerText(strings.Repeat("─", width)), title, m.input.View()}
}

func (m model) confirmOverlayLines(width int) []string {
	title := lipgloss.NewStyle().Bold(true).
		Render("Commit — Confirm (y/enter: commit, b: back, esc: cancel)")
	lines := []string{
		m.theme.DividerText(strings.Repeat("─", width)),
		title,
		fmt.Sprintf("Hunks: %s", strings.Join(m.selectedIDs(), ", ")),
		"Message: " + m.input.Value(),
	}
	if m.running {
		lines = append(lines, m.theme.MetaText("Committing..."))
	}
	if m.err != "" {
		lines = append(lines, m.theme.DelText("Error: ")+m.err)
	}
	return lines
}

func (m *model) recalcViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	_, rightW := m.columnWidths()
	m.previewVP.Width = rightW
	m.previewVP.Height = m.contentHeight(len(m.overlayLines(m.width)))
	m.previewVP.SetContent(strings.Join(m.previewLines(rightW), "\n"))
}

func padToWidth(s string, w int) string {
	width := lipgloss.Width(s)
	if width == w {
		return s
	}
	if width < w {
		return s + strings.Repeat(" ", w-width)
	}
	return ansi.Truncate(s, w, "…")
}
