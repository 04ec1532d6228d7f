package groundtruth

import "fmt"

// ChangeKind classifies a commit's exported ground truth by the mix of
// groups it contains.
type ChangeKind string

const (
	// ChangeEmpty means the commit exported no labelled code lines.
	ChangeEmpty ChangeKind = "empty"
	// ChangeFix means every labelled line belongs to the bug fix.
	ChangeFix ChangeKind = "fix"
	// ChangeOther means no labelled line belongs to the bug fix.
	ChangeOther ChangeKind = "other"
	// ChangeMixed means the commit tangles fix and non-fix lines.
	ChangeMixed ChangeKind = "mixed"
)

// ChangeType classifies the group column of a commit's ground truth.
//
// Both the export spellings ("bugfix"/"nonbugfix") and the evaluation
// pipeline spellings ("fix"/"other") are accepted; "both" marks a line
// tangling the two and forces the mixed classification. Any other group
// value is an error.
func ChangeType(groups []string) (ChangeKind, error) {
	if len(groups) == 0 {
		return ChangeEmpty, nil
	}

	var sawFix, sawOther, sawBoth bool
	for _, group := range groups {
		switch group {
		case "fix", "bugfix":
			sawFix = true
		case "other", "nonbugfix":
			sawOther = true
		case "both":
			sawBoth = true
		default:
			return "", fmt.Errorf("unknown ground truth group %q", group)
		}
	}

	switch {
	case sawBoth, sawFix && sawOther:
		return ChangeMixed, nil
	case sawFix:
		return ChangeFix, nil
	default:
		return ChangeOther, nil
	}
}
