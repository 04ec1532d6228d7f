package groundtruth

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Thomsch/export-lltc4j/internal/domain"
)

// ErrInvalidHunk indicates a hunk that violates the labelling
// preconditions: a verified offset pointing outside the hunk content, or
// a labelled line without a recognized diff marker.
var ErrInvalidHunk = errors.New("invalid hunk")

// LabelLines produces the ground-truth records for the given hunks.
//
// Only lines under a code-relevant label contribute records; labels for
// test, documentation, and whitespace changes, as well as labels outside
// the taxonomy, are skipped without error. Context lines listed under a
// code-relevant label contribute nothing. Hunk order and within-hunk
// offset order are preserved.
//
// For an added line, the new-file line number is the hunk start plus the
// offset minus the hunk's deleted-line count: the deletions occupy
// offsets before the additions they are paired with but do not advance
// the new-file line counter.
func LabelLines(hunks []domain.Hunk) ([]domain.LineRecord, error) {
	records := []domain.LineRecord{}

	for _, hunk := range hunks {
		lines := hunk.ContentLines()

		// Map iteration order is randomized; sort the labels so repeated
		// runs over the same snapshot export identical files.
		for _, label := range sortedLabels(hunk.LinesVerified) {
			group, ok := domain.GroupForLabel(label)
			if !ok {
				continue
			}

			for _, i := range hunk.LinesVerified[label] {
				if i < 0 || i >= len(lines) {
					return nil, fmt.Errorf("%w: offset %d outside hunk content (%d lines)", ErrInvalidHunk, i, len(lines))
				}

				switch marker(lines[i]) {
				case markerDeletion:
					source := hunk.OldStart + i
					records = append(records, domain.LineRecord{Source: &source, Group: group})
				case markerAddition:
					target := hunk.NewStart + i - hunk.OldLines
					records = append(records, domain.LineRecord{Target: &target, Group: group})
				case markerContext:
					// Context line. Nothing to export.
				default:
					return nil, fmt.Errorf("%w: line %d has no diff marker: %q", ErrInvalidHunk, i, lines[i])
				}
			}
		}
	}
	return records, nil
}

func sortedLabels(linesVerified map[string][]int) []string {
	labels := make([]string, 0, len(linesVerified))
	for label := range linesVerified {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

type lineMarker int

const (
	markerContext lineMarker = iota
	markerAddition
	markerDeletion
	markerUnknown
)

func marker(line string) lineMarker {
	if line == "" {
		return markerContext
	}
	switch line[0] {
	case '-':
		return markerDeletion
	case '+':
		return markerAddition
	case ' ':
		return markerContext
	default:
		return markerUnknown
	}
}
