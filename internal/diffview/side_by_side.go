package diffview

import "github.com/interpretive-systems/hunkslice/internal/patch"

// RowKind represents the semantic type of a side-by-side row.
type RowKind int

const (
	RowContext RowKind = iota
	RowAdd
	RowDel
	RowReplace
	RowHunk
	RowMeta
)

// Row represents a single visual row for side-by-side rendering.
type Row struct {
	Left  string
	Right string
	Kind  RowKind
	Meta  string // hunk header or marker text
}

// BuildRows lays out a parsed hunk as side-by-side rows.
// Within a run of changes, deletions are paired with the additions that
// follow them as replacements; leftovers are shown left-only (deletions) or
// right-only (additions). A missing trailing newline adds a RowMeta marker.
func BuildRows(h *patch.Hunk) []Row {
	if h == nil {
		return nil
	}
	rows := make([]Row, 0, len(h.Lines)+1)
	rows = append(rows, Row{Kind: RowHunk, Meta: h.Header})

	var pendingDel []string
	flushPending := func() {
		for _, dl := range pendingDel {
			rows = append(rows, Row{Left: dl, Kind: RowDel})
		}
		pendingDel = pendingDel[:0]
	}

	for _, l := range h.Lines {
		switch l.Kind {
		case patch.Context:
			flushPending()
			rows = append(rows, Row{Left: l.Content, Right: l.Content, Kind: RowContext})
		case patch.Removed:
			pendingDel = append(pendingDel, l.Content)
		case patch.Added:
			if len(pendingDel) > 0 {
				dl := pendingDel[0]
				pendingDel = pendingDel[1:]
				rows = append(rows, Row{Left: dl, Right: l.Content, Kind: RowReplace})
			} else {
				rows = append(rows, Row{Right: l.Content, Kind: RowAdd})
			}
		}
		if l.NoNewline {
			flushPending()
			rows = append(rows, Row{Kind: RowMeta, Meta: patch.NoNewlineMarker})
		}
	}
	flushPending()
	return rows
}
