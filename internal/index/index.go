// Package index flattens a parsed diff into an ordered list of addressable
// hunks. Each hunk gets an id of the form "<path>:<target-start>", with a
// ":<n>" suffix added from the second hunk that shares the same path and
// target start line.
package index

import (
	"strconv"

	"github.com/interpretive-systems/hunkslice/internal/patch"
)

// Entry is one addressable hunk.
type Entry struct {
	ID   string
	Path string
	File *patch.FilePatch
	Hunk *patch.Hunk
}

// Index is the flattened hunk list in diff order.
type Index []Entry

type coord struct {
	path   string
	target int
}

// Build assigns ids to every hunk of set, in file order then hunk order.
// The result depends only on the parse order, so building twice yields the
// same ids.
func Build(set *patch.Set) Index {
	if set == nil {
		return nil
	}
	seen := make(map[coord]int)
	out := make(Index, 0, set.HunkCount())
	for _, f := range set.Files {
		for _, h := range f.Hunks {
			k := coord{path: f.Path, target: h.TargetStart}
			seen[k]++
			out = append(out, Entry{
				ID:   FormatID(f.Path, h.TargetStart, seen[k]),
				Path: f.Path,
				File: f,
				Hunk: h,
			})
		}
	}
	return out
}

// FormatID renders the id of the occurrence-th hunk (1-based) at path:target.
func FormatID(path string, target, occurrence int) string {
	id := path + ":" + strconv.Itoa(target)
	if occurrence > 1 {
		id += ":" + strconv.Itoa(occurrence)
	}
	return id
}

// IDs returns the ids in order.
func (ix Index) IDs() []string {
	ids := make([]string, len(ix))
	for i, e := range ix {
		ids[i] = e.ID
	}
	return ids
}

// Lookup finds the entry with the given id.
func (ix Index) Lookup(id string) (Entry, bool) {
	for _, e := range ix {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
