package groundtruth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thomsch/export-lltc4j/internal/domain"
	"github.com/Thomsch/export-lltc4j/internal/groundtruth"
)

// makeHunk builds a hunk from its diff lines, deriving the old/new line
// counts from the markers. Every line must start with '-' or '+'.
func makeHunk(t *testing.T, oldStart, newStart int, content []string, linesVerified map[string][]int) domain.Hunk {
	t.Helper()

	var deleted, added int
	for _, line := range content {
		switch {
		case strings.HasPrefix(line, "-"):
			deleted++
		case strings.HasPrefix(line, "+"):
			added++
		default:
			t.Fatalf("invalid start of line %q, expected '-' or '+'", line)
		}
	}

	return domain.Hunk{
		OldStart:      oldStart,
		OldLines:      deleted,
		NewStart:      newStart,
		NewLines:      added,
		Content:       strings.Join(content, "\n"),
		LinesVerified: linesVerified,
	}
}

func record(source, target int, group domain.Group) domain.LineRecord {
	rec := domain.LineRecord{Group: group}
	if source != 0 {
		rec.Source = &source
	}
	if target != 0 {
		rec.Target = &target
	}
	return rec
}

func TestLabelLines_Empty(t *testing.T) {
	records, err := groundtruth.LabelLines(nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = groundtruth.LabelLines([]domain.Hunk{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLabelLines_ModifiedLine(t *testing.T) {
	// A modified line is a deletion plus an addition: two records.
	hunk := makeHunk(t, 42, 42,
		[]string{"- A", "+ B"},
		map[string][]int{"bugfix": {0, 1}},
	)

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)

	assert.Equal(t, []domain.LineRecord{
		record(42, 0, domain.GroupBugfix),
		record(0, 42, domain.GroupBugfix),
	}, records)
}

func TestLabelLines_SingleDeletion(t *testing.T) {
	hunk := makeHunk(t, 42, 42, []string{"- A"}, map[string][]int{"bugfix": {0}})

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)

	require.Len(t, records, 1)
	require.NotNil(t, records[0].Source)
	assert.Equal(t, 42, *records[0].Source)
	assert.Nil(t, records[0].Target)
	assert.Equal(t, domain.GroupBugfix, records[0].Group)
}

func TestLabelLines_SingleAddition(t *testing.T) {
	hunk := makeHunk(t, 42, 42, []string{"+ A"}, map[string][]int{"bugfix": {0}})

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Nil(t, records[0].Source)
	require.NotNil(t, records[0].Target)
	assert.Equal(t, 42, *records[0].Target)
}

func TestLabelLines_DisjointLabels(t *testing.T) {
	hunk := makeHunk(t, 42, 42,
		[]string{"- A", "- B", "+ AA", "+ BB", "+ CC"},
		map[string][]int{
			"bugfix":    {0, 2, 4},
			"no_bugfix": {1, 3},
		},
	)

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.LineRecord{
		record(42, 0, domain.GroupBugfix),
		record(0, 42, domain.GroupBugfix),
		record(0, 44, domain.GroupBugfix),
		record(43, 0, domain.GroupNonBugfix),
		record(0, 43, domain.GroupNonBugfix),
	}, records)
}

// Pins the addition formula: the new-file line number subtracts the
// hunk's deleted-line count so additions interleaved after deletions map
// to the correct position in the new file.
func TestLabelLines_AdditionOffsetSubtractsDeletions(t *testing.T) {
	hunk := makeHunk(t, 10, 10,
		[]string{"- old one", "- old two", "+ new one"},
		map[string][]int{"bugfix": {2}},
	)

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)

	require.Len(t, records, 1)
	require.NotNil(t, records[0].Target)
	// new_start(10) + offset(2) - old_lines(2)
	assert.Equal(t, 10, *records[0].Target)
}

func TestLabelLines_MultipleHunks(t *testing.T) {
	hunk1 := makeHunk(t, 7, 7, []string{"- A1"}, map[string][]int{"bugfix": {0}})
	hunk2 := makeHunk(t, 42, 41, []string{"- A2"}, map[string][]int{"bugfix": {0}})

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk1, hunk2})
	require.NoError(t, err)

	assert.Equal(t, []domain.LineRecord{
		record(7, 0, domain.GroupBugfix),
		record(42, 0, domain.GroupBugfix),
	}, records)
}

func TestLabelLines_InterHunkStartChange(t *testing.T) {
	// A second hunk shifted by earlier changes uses its own new_start.
	hunk1 := makeHunk(t, 7, 7, []string{"- A1"}, map[string][]int{"bugfix": {0}})
	hunk2 := makeHunk(t, 42, 41, []string{"+ A2"}, map[string][]int{"bugfix": {0}})

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk1, hunk2})
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.LineRecord{
		record(7, 0, domain.GroupBugfix),
		record(0, 41, domain.GroupBugfix),
	}, records)
}

func TestLabelLines_ExcludesNonCodeChanges(t *testing.T) {
	hunk := makeHunk(t, 0, 0,
		[]string{"+ 0", "+ 1", "+ 2", "+ 3", "+ 4", "+ 5", "+ 6", "+ 7", "+ 8", "+ 9"},
		map[string][]int{
			"test":                {0},
			"refactoring":         {1},
			"unrelated":           {2},
			"bugfix":              {3},
			"documentation":       {4},
			"None":                {5},
			"test_doc_whitespace": {6},
			"whitespace":          {7},
			"no_bugfix":           {8},
			"unknown_label":       {9}, // Unknown labels must not be an error.
		},
	)

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.LineRecord{
		record(0, 1, domain.GroupNonBugfix),
		record(0, 2, domain.GroupNonBugfix),
		record(0, 3, domain.GroupBugfix),
		record(0, 8, domain.GroupNonBugfix),
	}, records)
}

func TestLabelLines_ContextLinesSkipped(t *testing.T) {
	hunk := domain.Hunk{
		OldStart: 5,
		OldLines: 1,
		NewStart: 5,
		NewLines: 1,
		Content:  " unchanged\n- removed\n+ added",
		LinesVerified: map[string][]int{
			"bugfix": {0, 1, 2},
		},
	}

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)

	// The context line at offset 0 contributes nothing.
	assert.ElementsMatch(t, []domain.LineRecord{
		record(6, 0, domain.GroupBugfix),
		record(0, 6, domain.GroupBugfix),
	}, records)
}

func TestLabelLines_EmptyOffsetsContributeNothing(t *testing.T) {
	hunk := makeHunk(t, 1, 1, []string{"+ A"}, map[string][]int{"bugfix": {}})

	records, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLabelLines_OffsetOutsideContent(t *testing.T) {
	hunk := makeHunk(t, 1, 1, []string{"+ A"}, map[string][]int{"bugfix": {3}})

	_, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	require.Error(t, err)
	assert.ErrorIs(t, err, groundtruth.ErrInvalidHunk)
}

func TestLabelLines_MissingMarker(t *testing.T) {
	hunk := domain.Hunk{
		OldStart:      1,
		NewStart:      1,
		Content:       "not a diff line",
		LinesVerified: map[string][]int{"bugfix": {0}},
	}

	_, err := groundtruth.LabelLines([]domain.Hunk{hunk})
	assert.ErrorIs(t, err, groundtruth.ErrInvalidHunk)
}

func TestLabelLines_Idempotent(t *testing.T) {
	hunks := []domain.Hunk{
		makeHunk(t, 42, 42,
			[]string{"- A", "- B", "+ AA", "+ BB", "+ CC"},
			map[string][]int{"bugfix": {0, 2, 4}, "no_bugfix": {1, 3}},
		),
	}

	first, err := groundtruth.LabelLines(hunks)
	require.NoError(t, err)
	second, err := groundtruth.LabelLines(hunks)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
