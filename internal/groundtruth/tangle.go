package groundtruth

import "github.com/Thomsch/export-lltc4j/internal/domain"

// CountTangledLines returns the number of line offsets claimed by more
// than one label across the given hunks. A tangled line means the manual
// labelling itself is ambiguous; the count is reported, not resolved.
func CountTangledLines(hunks []domain.Hunk) int {
	tangled := 0
	for _, hunk := range hunks {
		seen := map[int]bool{}
		for _, label := range sortedLabels(hunk.LinesVerified) {
			for _, i := range hunk.LinesVerified[label] {
				if seen[i] {
					tangled++
				}
				seen[i] = true
			}
		}
	}
	return tangled
}

// CountTangledHunks returns the number of hunks whose code-relevant
// labels span both the fix and non-fix groups, meaning the hunk mixes
// bug-fixing and unrelated code changes.
func CountTangledHunks(hunks []domain.Hunk) int {
	tangled := 0
	for _, hunk := range hunks {
		var sawFix, sawNonFix bool
		for label := range hunk.LinesVerified {
			switch group, ok := domain.GroupForLabel(label); {
			case !ok:
				continue
			case group == domain.GroupBugfix:
				sawFix = true
			case group == domain.GroupNonBugfix:
				sawNonFix = true
			}
		}
		if sawFix && sawNonFix {
			tangled++
		}
	}
	return tangled
}
