// Package patch models a parsed unified diff: an ordered set of file
// sections, each keeping its header text verbatim and owning its hunks.
// Values are built once by Parse and never modified afterwards.
package patch

import "strings"

// DevNull is the path git uses for the missing side of an added or deleted file.
const DevNull = "/dev/null"

// NoNewlineMarker follows a body line that has no trailing newline in the file.
const NoNewlineMarker = `\ No newline at end of file`

// LineKind classifies a hunk body line.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

// Marker returns the one-character prefix used for the kind in diff text.
func (k LineKind) Marker() byte {
	switch k {
	case Added:
		return '+'
	case Removed:
		return '-'
	default:
		return ' '
	}
}

func (k LineKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "context"
	}
}

// Line is a single hunk body line with its marker stripped.
type Line struct {
	Kind    LineKind
	Content string
	// NoNewline is set when the line is followed by NoNewlineMarker.
	NoNewline bool
}

// String returns the line as diff text, newline terminated.
func (l Line) String() string {
	var sb strings.Builder
	l.writeTo(&sb)
	return sb.String()
}

func (l Line) writeTo(sb *strings.Builder) {
	sb.WriteByte(l.Kind.Marker())
	sb.WriteString(l.Content)
	sb.WriteByte('\n')
	if l.NoNewline {
		sb.WriteString(NoNewlineMarker)
		sb.WriteByte('\n')
	}
}

// Hunk is one "@@ -a,b +c,d @@" block of a file section.
type Hunk struct {
	// Header is the original hunk header line, without its newline.
	Header string

	SourceStart  int
	SourceLength int
	TargetStart  int
	TargetLength int

	// Section is the optional text after the closing "@@", leading space included.
	Section string

	Lines []Line
}

// Added returns the number of added lines in the hunk body.
func (h *Hunk) Added() int {
	return h.count(Added)
}

// Removed returns the number of removed lines in the hunk body.
func (h *Hunk) Removed() int {
	return h.count(Removed)
}

func (h *Hunk) count(kind LineKind) int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// String returns the hunk header and body exactly as parsed, newline terminated.
func (h *Hunk) String() string {
	var sb strings.Builder
	sb.WriteString(h.Header)
	sb.WriteByte('\n')
	for _, l := range h.Lines {
		l.writeTo(&sb)
	}
	return sb.String()
}

// FilePatch is the section of a diff that describes one file.
type FilePatch struct {
	// Path identifies the file: the target path, or the source path for deletions.
	Path string

	// SourcePath and TargetPath come from the ---/+++ lines with the a/ and b/
	// prefixes removed. Either may be DevNull.
	SourcePath string
	TargetPath string

	// Preamble is every header line of the section up to the first hunk,
	// verbatim, each line newline terminated.
	Preamble string

	Hunks []*Hunk

	// Binary is set for sections git reports as binary; they carry no hunks.
	Binary bool
}

// IsNew reports whether the section adds a file.
func (f *FilePatch) IsNew() bool {
	return f.SourcePath == DevNull
}

// IsDeleted reports whether the section removes a file.
func (f *FilePatch) IsDeleted() bool {
	return f.TargetPath == DevNull
}

// String returns the section's preamble followed by all of its hunks.
func (f *FilePatch) String() string {
	var sb strings.Builder
	sb.WriteString(f.Preamble)
	for _, h := range f.Hunks {
		sb.WriteString(h.String())
	}
	return sb.String()
}

// Set is a whole parsed diff.
type Set struct {
	// Prologue holds text found before the first file header, such as a mail
	// header from format-patch output.
	Prologue string
	Files    []*FilePatch
}

// HunkCount returns the total number of hunks across all files.
func (s *Set) HunkCount() int {
	n := 0
	for _, f := range s.Files {
		n += len(f.Hunks)
	}
	return n
}

// String re-serializes the whole diff.
func (s *Set) String() string {
	var sb strings.Builder
	sb.WriteString(s.Prologue)
	for _, f := range s.Files {
		sb.WriteString(f.String())
	}
	return sb.String()
}
