// Package count tallies exported commits by the kind of change their
// ground truth contains.
package count

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Thomsch/export-lltc4j/internal/groundtruth"
)

// GroupsReader loads the group column of one ground truth file.
type GroupsReader func(path string) ([]string, error)

// Result is the tally over every commit directory in an export.
type Result struct {
	Total int
	Kinds map[groundtruth.ChangeKind]int
}

// Tally scans dir for per-commit truth.csv files and classifies each one.
func Tally(dir string, read GroupsReader) (Result, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*", "truth.csv"))
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(matches)

	result := Result{Kinds: map[groundtruth.ChangeKind]int{}}
	for _, path := range matches {
		groups, err := read(path)
		if err != nil {
			return Result{}, err
		}
		kind, err := groundtruth.ChangeType(groups)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", path, err)
		}
		result.Kinds[kind]++
		result.Total++
	}
	return result, nil
}
