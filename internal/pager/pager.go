// Package pager renders bounded previews of indexed hunks so callers with a
// small output budget can walk a large diff page by page without ever
// printing whole hunk bodies.
package pager

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/interpretive-systems/hunkslice/internal/index"
	"github.com/interpretive-systems/hunkslice/internal/patch"
)

// PreviewLines is the maximum number of body lines shown per hunk.
const PreviewLines = 5

// Sink receives rendered text blocks.
type Sink interface {
	Echo(text string)
}

// WriterSink echoes each block to W followed by a newline.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Echo(text string) {
	fmt.Fprintln(s.W, text)
}

// Buffer collects echoed blocks in memory.
type Buffer struct {
	Blocks []string
}

func (b *Buffer) Echo(text string) {
	b.Blocks = append(b.Blocks, text)
}

func (b *Buffer) String() string {
	return strings.Join(b.Blocks, "\n")
}

// Window is a page of the index.
type Window struct {
	// Start is the 1-based position of the first requested entry.
	Start   int
	Entries index.Index
	Total   int
}

// Last returns the 1-based position of the last entry in the window, or 0.
func (w Window) Last() int {
	if len(w.Entries) == 0 {
		return 0
	}
	return w.Start + len(w.Entries) - 1
}

// Page returns entries [start, start+count) of ix clamped to [1, len(ix)].
// A start below 1 is treated as 1; a start past the end or a count below 1
// gives an empty window that still reports the total.
func Page(ix index.Index, start, count int) Window {
	if start < 1 {
		start = 1
	}
	w := Window{Start: start, Total: len(ix)}
	if count < 1 || start > len(ix) {
		return w
	}
	if rest := len(ix) - start + 1; count > rest {
		count = rest
	}
	w.Entries = ix[start-1 : start-1+count]
	return w
}

// ColorMode controls whether thumbnails are styled.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts auto, always or never (empty means auto).
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Renderer formats windows into thumbnails.
type Renderer struct {
	color   bool
	id      lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	faint   lipgloss.Style
}

// NewRenderer creates a renderer for output going to w.
func NewRenderer(w io.Writer, mode ColorMode) *Renderer {
	color := false
	switch mode {
	case ColorAlways:
		color = true
	case ColorAuto:
		color = termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii
	}

	lr := lipgloss.NewRenderer(w)
	if color {
		lr.SetColorProfile(termenv.ANSI256)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		color:   color,
		id:      lr.NewStyle().Bold(true),
		added:   lr.NewStyle().Foreground(lipgloss.Color("34")),
		removed: lr.NewStyle().Foreground(lipgloss.Color("196")),
		faint:   lr.NewStyle().Faint(true),
	}
}

// Plain returns a renderer that never styles its output.
func Plain() *Renderer {
	return NewRenderer(io.Discard, ColorNever)
}

// Render echoes one thumbnail per entry followed by a footer. An empty index
// renders a single "no hunks" line.
func (r *Renderer) Render(sink Sink, w Window) {
	if w.Total == 0 {
		sink.Echo("no hunks")
		return
	}
	for _, e := range w.Entries {
		sink.Echo(r.Thumbnail(e))
	}
	sink.Echo(r.style(r.faint, Footer(w)))
}

// Footer summarizes the window.
func Footer(w Window) string {
	if len(w.Entries) == 0 {
		return fmt.Sprintf("-- showing none of %d (start %d) --", w.Total, w.Start)
	}
	return fmt.Sprintf("-- showing %d-%d of %d --", w.Start, w.Last(), w.Total)
}

// Thumbnail renders the id line and at most PreviewLines body lines of e.
func (r *Renderer) Thumbnail(e index.Entry) string {
	h := e.Hunk
	lines := make([]string, 0, PreviewLines+2)
	head := fmt.Sprintf("%s %s:%d (+%d -%d)",
		r.style(r.id, "["+e.ID+"]"), e.Path, h.TargetStart, h.Added(), h.Removed())
	lines = append(lines, head)

	for i, l := range h.Lines {
		if i == PreviewLines {
			lines = append(lines, "  ...")
			break
		}
		text := string(l.Kind.Marker()) + strings.TrimRightFunc(l.Content, unicode.IsSpace)
		switch l.Kind {
		case patch.Added:
			text = r.style(r.added, text)
		case patch.Removed:
			text = r.style(r.removed, text)
		}
		lines = append(lines, "  "+text)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}
