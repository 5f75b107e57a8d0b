package ui

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeKind tells whether a segment was kept, added or removed
type ChangeKind int

const (
	Unchanged ChangeKind = iota
	Added
	Removed
)

// Segment is one run of text in a command diff
type Segment struct {
	Kind ChangeKind
	Text string
}

// DiffCommands returns the character level difference from previous to current.
func DiffCommands(previous, current string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(previous, current, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			segments = append(segments, Segment{Kind: Added, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			segments = append(segments, Segment{Kind: Removed, Text: d.Text})
		default:
			segments = append(segments, Segment{Kind: Unchanged, Text: d.Text})
		}
	}
	return segments
}

// HighlightChanges renders current with additions emphasized. Removed text is
// shown struck through so the user can see what was dropped.
func HighlightChanges(previous, current string) string {
	var b strings.Builder
	for _, seg := range DiffCommands(previous, current) {
		switch seg.Kind {
		case Added:
			b.WriteString(pterm.NewStyle(pterm.FgLightGreen, pterm.Bold).Sprint(seg.Text))
		case Removed:
			b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Strikethrough).Sprint(seg.Text))
		default:
			b.WriteString(pterm.Green(seg.Text))
		}
	}
	return b.String()
}
