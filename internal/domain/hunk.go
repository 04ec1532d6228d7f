package domain

import "strings"

// Line change labels assigned manually by the dataset authors. The set is
// closed; labels outside it may still appear in snapshots and are
// tolerated by the labelling transform.
const (
	LabelTest              = "test"
	LabelRefactoring       = "refactoring"
	LabelUnrelated         = "unrelated"
	LabelBugfix            = "bugfix"
	LabelDocumentation     = "documentation"
	LabelNone              = "None"
	LabelTestDocWhitespace = "test_doc_whitespace"
	LabelWhitespace        = "whitespace"
	LabelNoBugfix          = "no_bugfix"
)

// Group is the coarse category a labelled code line is exported under.
type Group string

const (
	// GroupBugfix covers lines participating in the bug fix itself.
	GroupBugfix Group = "bugfix"
	// GroupNonBugfix covers code changes unrelated to the fix.
	GroupNonBugfix Group = "nonbugfix"
)

// GroupForLabel maps a raw label to its export group. The second return
// is false for labels that denote test, documentation, or whitespace
// changes, and for labels outside the taxonomy; those lines are excluded
// from the ground truth entirely.
func GroupForLabel(label string) (Group, bool) {
	switch label {
	case LabelBugfix:
		return GroupBugfix, true
	case LabelRefactoring, LabelUnrelated, LabelNoBugfix:
		return GroupNonBugfix, true
	default:
		return "", false
	}
}

// Hunk is one contiguous diff region within a file change, as stored in
// the SmartSHARK snapshot. LinesVerified maps a label to the zero-based
// offsets into the hunk content that carry it.
type Hunk struct {
	OldStart      int
	OldLines      int
	NewStart      int
	NewLines      int
	Content       string
	LinesVerified map[string][]int
}

// ContentLines splits the hunk content into its raw diff lines.
func (h Hunk) ContentLines() []string {
	if h.Content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(h.Content, "\n"), "\n")
}

// LineRecord is one row of the exported ground truth. Exactly one of
// Source and Target is set: deletions populate Source with the old-file
// line number, additions populate Target with the new-file line number.
type LineRecord struct {
	Source *int
	Target *int
	Group  Group
}
