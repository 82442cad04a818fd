package patch

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
)

// hunkHeaderRegex matches unified diff hunk headers like:
// @@ -1,5 +1,7 @@
// @@ -0,0 +1 @@ (length omitted means 1)
// @@ -10,4 +11,5 @@ func main() {
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)

// gitHeaderRegex matches the git file header like:
// diff --git a/path/to/file b/path/to/file
var gitHeaderRegex = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)

// Parse converts raw unified diff text into a Set.
//
// Hunk bodies are delimited by the lengths declared in their headers, the same
// way git apply reads them, because a removed line such as "-- x" followed by
// an added "++ y" is indistinguishable from a file header otherwise. Any input
// that cannot be interpreted fails with a diff.malformed error; no partial Set
// is returned.
//
// Empty or whitespace-only text yields an empty Set.
func Parse(text string) (*Set, error) {
	set := &Set{}
	if strings.TrimSpace(text) == "" {
		return set, nil
	}

	p := &parser{lines: splitLines(text)}

	var prologue strings.Builder
	for !p.eof() && !p.atFileHeader() {
		prologue.WriteString(p.line())
		prologue.WriteByte('\n')
		p.pos++
	}
	if p.eof() {
		return nil, apperrors.MalformedDiff("no file header found in %d lines of input", len(p.lines))
	}
	set.Prologue = prologue.String()

	for !p.eof() {
		line := p.line()
		if line == "" {
			p.pos++
			continue
		}
		if !p.atFileHeader() {
			return nil, apperrors.MalformedDiff("line %d: unexpected %q outside of a hunk", p.pos+1, line)
		}
		f, err := p.parseFile()
		if err != nil {
			return nil, err
		}
		set.Files = append(set.Files, f)
	}
	return set, nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.lines)
}

func (p *parser) line() string {
	return p.lines[p.pos]
}

// atFileHeader reports whether the current line opens a new file section.
func (p *parser) atFileHeader() bool {
	line := p.line()
	if strings.HasPrefix(line, "diff ") {
		return true
	}
	return strings.HasPrefix(line, "--- ") &&
		p.pos+1 < len(p.lines) &&
		strings.HasPrefix(p.lines[p.pos+1], "+++ ")
}

func (p *parser) parseFile() (*FilePatch, error) {
	start := p.pos
	first := p.line()
	if strings.HasPrefix(first, "diff --cc ") || strings.HasPrefix(first, "diff --combined ") {
		return nil, apperrors.MalformedDiff("line %d: combined diffs are not supported", start+1)
	}

	f := &FilePatch{}
	var gitA, gitB, renameTo string
	sawTarget := false
	var preamble strings.Builder

	for !p.eof() {
		line := p.line()
		if strings.HasPrefix(line, "@@") {
			break
		}
		if p.pos > start && (strings.HasPrefix(line, "diff ") || (sawTarget && p.atFileHeader())) {
			break
		}
		switch {
		case p.pos == start && strings.HasPrefix(line, "diff --git "):
			gitA, gitB = parseGitHeader(line)
		case strings.HasPrefix(line, "--- "):
			f.SourcePath = parseHeaderPath(line[4:], "a/")
		case strings.HasPrefix(line, "+++ "):
			f.TargetPath = parseHeaderPath(line[4:], "b/")
			sawTarget = true
		case strings.HasPrefix(line, "rename to "):
			renameTo = unquotePath(strings.TrimPrefix(line, "rename to "))
		case strings.HasPrefix(line, "copy to "):
			renameTo = unquotePath(strings.TrimPrefix(line, "copy to "))
		case strings.HasPrefix(line, "Binary files "), line == "GIT binary patch":
			f.Binary = true
		}
		preamble.WriteString(line)
		preamble.WriteByte('\n')
		p.pos++
	}

	f.Preamble = preamble.String()
	if f.SourcePath == "" {
		f.SourcePath = gitA
	}
	if f.TargetPath == "" {
		f.TargetPath = gitB
	}
	f.Path = pickPath(f, renameTo)

	for !p.eof() && strings.HasPrefix(p.line(), "@@") {
		h, err := p.parseHunk()
		if err != nil {
			return nil, err
		}
		f.Hunks = append(f.Hunks, h)
	}

	if len(f.Hunks) == 0 && sawTarget && !f.Binary {
		return nil, apperrors.MalformedDiff("file %s (line %d) has ---/+++ headers but no hunks", f.Path, start+1)
	}
	return f, nil
}

func (p *parser) parseHunk() (*Hunk, error) {
	start := p.pos
	header := p.line()
	m := hunkHeaderRegex.FindStringSubmatch(header)
	if m == nil {
		return nil, apperrors.MalformedDiff("line %d: cannot parse hunk header %q", start+1, header)
	}

	h := &Hunk{Header: header, Section: m[5]}
	var err error
	if h.SourceStart, h.SourceLength, err = parseRange(m[1], m[2]); err != nil {
		return nil, apperrors.MalformedDiff("line %d: bad source range in %q: %v", start+1, header, err)
	}
	if h.TargetStart, h.TargetLength, err = parseRange(m[3], m[4]); err != nil {
		return nil, apperrors.MalformedDiff("line %d: bad target range in %q: %v", start+1, header, err)
	}
	p.pos++

	oldLeft, newLeft := h.SourceLength, h.TargetLength
	for oldLeft > 0 || newLeft > 0 {
		if p.eof() {
			return nil, apperrors.MalformedDiff("line %d: hunk %q ends before its declared length", start+1, header)
		}
		line := p.line()
		// Some editors strip the single space of an empty context line.
		if line == "" {
			line = " "
		}
		switch line[0] {
		case ' ':
			if oldLeft == 0 || newLeft == 0 {
				return nil, p.overflow(header)
			}
			oldLeft--
			newLeft--
			h.Lines = append(h.Lines, Line{Kind: Context, Content: line[1:]})
		case '-':
			if oldLeft == 0 {
				return nil, p.overflow(header)
			}
			oldLeft--
			h.Lines = append(h.Lines, Line{Kind: Removed, Content: line[1:]})
		case '+':
			if newLeft == 0 {
				return nil, p.overflow(header)
			}
			newLeft--
			h.Lines = append(h.Lines, Line{Kind: Added, Content: line[1:]})
		case '\\':
			if len(h.Lines) == 0 {
				return nil, apperrors.MalformedDiff("line %d: %q precedes any hunk line", p.pos+1, line)
			}
			h.Lines[len(h.Lines)-1].NoNewline = true
		default:
			return nil, apperrors.MalformedDiff("line %d: %q has no valid diff marker", p.pos+1, line)
		}
		p.pos++
	}

	if !p.eof() && strings.HasPrefix(p.line(), `\`) && len(h.Lines) > 0 {
		h.Lines[len(h.Lines)-1].NoNewline = true
		p.pos++
	}
	return h, nil
}

func (p *parser) overflow(header string) error {
	return apperrors.MalformedDiff("line %d: %q does not fit the lengths declared by %q", p.pos+1, p.line(), header)
}

// parseRange parses the "start[,length]" half of a hunk header.
func parseRange(start, length string) (int, int, error) {
	s, err := strconv.Atoi(start)
	if err != nil {
		return 0, 0, err
	}
	if length == "" {
		return s, 1, nil
	}
	l, err := strconv.Atoi(length)
	if err != nil {
		return 0, 0, err
	}
	return s, l, nil
}

// parseGitHeader extracts both paths from a "diff --git" line.
func parseGitHeader(line string) (string, string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	if strings.HasPrefix(rest, `"`) {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return "", ""
		}
		a := parseHeaderPath(q, "a/")
		b := parseHeaderPath(strings.TrimPrefix(rest[len(q):], " "), "b/")
		return a, b
	}
	if m := gitHeaderRegex.FindStringSubmatch(line); m != nil {
		return m[1], parseHeaderPath(m[2], "")
	}
	return "", ""
}

// parseHeaderPath reads the path of a ---/+++ line: any tab-separated
// timestamp is dropped, C-style quoting is undone and the side prefix removed.
func parseHeaderPath(s, prefix string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	s = unquotePath(s)
	if s == DevNull {
		return s
	}
	if prefix != "" {
		s = strings.TrimPrefix(s, prefix)
	}
	return s
}

// unquotePath undoes git's quoting of unusual file names ("a/tab\there").
func unquotePath(s string) string {
	if len(s) < 2 || s[0] != '"' {
		return s
	}
	u, err := strconv.Unquote(s)
	if err != nil {
		return s
	}
	return u
}

func pickPath(f *FilePatch, renameTo string) string {
	switch {
	case f.TargetPath != "" && f.TargetPath != DevNull:
		return f.TargetPath
	case f.SourcePath != "" && f.SourcePath != DevNull:
		return f.SourcePath
	default:
		return renameTo
	}
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
