// Package slice rebuilds a standalone patch from a chosen subset of hunks.
//
// Hunks are self-describing units of the unified format, so each selected hunk
// is copied exactly as parsed and its header counts are never recomputed.
// A file section is written only when at least one of its hunks is selected.
package slice

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/interpretive-systems/hunkslice/internal/index"
)

// Selection is a set of hunk ids. Ids that are not in the index are ignored.
type Selection map[string]struct{}

// NewSelection builds a Selection from ids; blank ids are skipped.
func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Reconstruct writes the selected hunks of ix to w, each preceded by its
// file's verbatim preamble the first time the file appears. Every written
// line ends in "\n". It returns the number of hunks written.
func Reconstruct(w io.Writer, ix index.Index, sel Selection) (int, error) {
	bw := bufio.NewWriter(w)
	written := 0
	var current *index.Entry
	for i := range ix {
		e := &ix[i]
		if !sel.Has(e.ID) {
			continue
		}
		if current == nil || current.File != e.File {
			writeTerminated(bw, e.File.Preamble)
			current = e
		}
		writeTerminated(bw, e.Hunk.String())
		written++
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return written, nil
}

// Text returns the reconstruction as a string.
func Text(ix index.Index, sel Selection) (string, int) {
	var sb strings.Builder
	// strings.Builder never fails to write.
	n, _ := Reconstruct(&sb, ix, sel)
	return sb.String(), n
}

// Unmatched returns the selected ids that name no hunk in ix, sorted.
func Unmatched(ix index.Index, sel Selection) []string {
	known := make(map[string]struct{}, len(ix))
	for _, e := range ix {
		known[e.ID] = struct{}{}
	}
	var out []string
	for id := range sel {
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func writeTerminated(w *bufio.Writer, s string) {
	if s == "" {
		return
	}
	w.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		w.WriteByte('\n')
	}
}
