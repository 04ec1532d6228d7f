package tangle

import (
	"context"
	"fmt"

	"github.com/Thomsch/export-lltc4j/internal/domain"
	"github.com/Thomsch/export-lltc4j/internal/groundtruth"
)

// Granularity selects the unit at which tangling is counted.
type Granularity string

const (
	// GranularityLine counts lines claimed by more than one label.
	GranularityLine Granularity = "line"
	// GranularityHunk counts hunks mixing fix and non-fix code changes.
	GranularityHunk Granularity = "hunk"
)

// Source provides read access to the mined repository snapshot.
type Source interface {
	Projects(ctx context.Context, names []string) ([]domain.Project, error)
	VCSSystem(ctx context.Context, projectID string) (domain.VCSSystem, error)
	ForEachCommit(ctx context.Context, vcsSystemID string, fn func(domain.Commit) error) error
	FileActions(ctx context.Context, commitID string) ([]domain.FileAction, error)
	File(ctx context.Context, fileID string) (domain.File, error)
	Hunks(ctx context.Context, fileActionID string) ([]domain.Hunk, error)
}

// Row reports one commit with tangled changes.
type Row struct {
	Project    string
	CommitHash string
	Count      int
}

// Lister finds commits in the dataset whose labelled changes are tangled.
type Lister struct {
	source Source
}

// NewLister constructs a lister over the given snapshot.
func NewLister(source Source) *Lister {
	return &Lister{source: source}
}

// List returns the commits with at least one tangled change at the given
// granularity, in project-then-commit order. Only eligible bugfix commits
// and exportable Java files are considered, mirroring the export filters.
func (l *Lister) List(ctx context.Context, projects []string, granularity Granularity) ([]Row, error) {
	count, err := counter(granularity)
	if err != nil {
		return nil, err
	}

	selected, err := l.source.Projects(ctx, projects)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var rows []Row
	for _, project := range selected {
		vcs, err := l.source.VCSSystem(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("vcs system for %s: %w", project.Name, err)
		}

		err = l.source.ForEachCommit(ctx, vcs.ID, func(commit domain.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !commit.EligibleBugfix() {
				return nil
			}

			tangled, err := l.countTangledChanges(ctx, commit, count)
			if err != nil {
				return fmt.Errorf("commit %s: %w", commit.RevisionHash, err)
			}
			if tangled > 0 {
				rows = append(rows, Row{Project: project.Name, CommitHash: commit.RevisionHash, Count: tangled})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (l *Lister) countTangledChanges(ctx context.Context, commit domain.Commit, count func([]domain.Hunk) int) (int, error) {
	actions, err := l.source.FileActions(ctx, commit.ID)
	if err != nil {
		return 0, fmt.Errorf("file actions: %w", err)
	}

	total := 0
	for _, action := range actions {
		id := action.FileID
		if id == "" {
			id = action.OldFileID
		}
		file, err := l.source.File(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("resolve file %s: %w", id, err)
		}
		if !domain.IsExportablePath(file.Path) {
			continue
		}

		hunks, err := l.source.Hunks(ctx, action.ID)
		if err != nil {
			return 0, fmt.Errorf("hunks for %s: %w", file.Path, err)
		}
		total += count(hunks)
	}
	return total, nil
}

func counter(granularity Granularity) (func([]domain.Hunk) int, error) {
	switch granularity {
	case GranularityLine:
		return groundtruth.CountTangledLines, nil
	case GranularityHunk:
		return groundtruth.CountTangledHunks, nil
	default:
		return nil, fmt.Errorf("unknown tangle granularity %q", granularity)
	}
}
