package inspect

import (
	"context"
	"fmt"
	"sort"

	"github.com/Thomsch/export-lltc4j/internal/domain"
)

// Source provides the commit lookups needed for label inspection.
type Source interface {
	CommitByHash(ctx context.Context, revisionHash string) (domain.Commit, error)
	FileActions(ctx context.Context, commitID string) ([]domain.FileAction, error)
	Hunks(ctx context.Context, fileActionID string) ([]domain.Hunk, error)
}

// LabelledLine pairs a raw diff line with the label assigned to it.
type LabelledLine struct {
	Label string
	Line  string
}

// CommitLabels is the manual labelling of one commit, flattened for
// display: each distinct labelled line once, plus the set of labels the
// commit carries anywhere.
type CommitLabels struct {
	CommitHash string
	Lines      []LabelledLine
	Labels     []string
}

// Inspector resolves the manual labels attached to commits.
type Inspector struct {
	source Source
}

// NewInspector constructs an inspector over the given snapshot.
func NewInspector(source Source) *Inspector {
	return &Inspector{source: source}
}

// Inspect returns the labelled lines of a commit. Lines are keyed by
// content: when the same content appears under several offsets the last
// label claim wins, which is enough for eyeballing a commit's labelling.
func (i *Inspector) Inspect(ctx context.Context, revisionHash string) (CommitLabels, error) {
	commit, err := i.source.CommitByHash(ctx, revisionHash)
	if err != nil {
		return CommitLabels{}, fmt.Errorf("commit %s: %w", revisionHash, err)
	}

	actions, err := i.source.FileActions(ctx, commit.ID)
	if err != nil {
		return CommitLabels{}, fmt.Errorf("file actions for %s: %w", revisionHash, err)
	}

	labelSet := map[string]bool{}
	labelByLine := map[string]string{}
	var lineOrder []string

	for _, action := range actions {
		hunks, err := i.source.Hunks(ctx, action.ID)
		if err != nil {
			return CommitLabels{}, fmt.Errorf("hunks for %s: %w", revisionHash, err)
		}

		for _, hunk := range hunks {
			lines := hunk.ContentLines()
			for _, label := range sortedKeys(hunk.LinesVerified) {
				labelSet[label] = true
				for _, offset := range hunk.LinesVerified[label] {
					if offset < 0 || offset >= len(lines) {
						return CommitLabels{}, fmt.Errorf("commit %s: offset %d outside hunk content", revisionHash, offset)
					}
					if _, seen := labelByLine[lines[offset]]; !seen {
						lineOrder = append(lineOrder, lines[offset])
					}
					labelByLine[lines[offset]] = label
				}
			}
		}
	}

	result := CommitLabels{CommitHash: revisionHash}
	for _, line := range lineOrder {
		result.Lines = append(result.Lines, LabelledLine{Label: labelByLine[line], Line: line})
	}
	result.Labels = sortedKeys(labelSet)
	return result, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
