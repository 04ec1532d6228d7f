package verify

import (
	"context"
	"fmt"
	"path/filepath"
)

// GitEngine resolves commits in local clones of the dataset projects.
type GitEngine interface {
	// ParentHash returns the hash of the only parent of the given commit.
	// It fails when the commit does not exist or does not have exactly
	// one parent.
	ParentHash(ctx context.Context, repoDir, commitHash string) (string, error)
}

// Row is one entry of an exported commit list to check.
type Row struct {
	ProjectName string
	CommitHash  string
	ParentHash  string
}

// Finding reports one exported commit that does not match its clone.
type Finding struct {
	Project    string
	CommitHash string
	Problem    string
}

// Checker validates an exported commit list against local clones: every
// commit must exist, have exactly one parent, and the parent must match
// the exported parent hash. Clones are expected under reposDir, one
// directory per project name.
type Checker struct {
	git      GitEngine
	reposDir string
}

// NewChecker constructs a checker reading clones from reposDir.
func NewChecker(git GitEngine, reposDir string) *Checker {
	return &Checker{git: git, reposDir: reposDir}
}

// Check returns one finding per row that fails validation. An empty
// result means the exported list is consistent with the clones.
func (c *Checker) Check(ctx context.Context, rows []Row) ([]Finding, error) {
	var findings []Finding
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		repoDir := filepath.Join(c.reposDir, row.ProjectName)
		parent, err := c.git.ParentHash(ctx, repoDir, row.CommitHash)
		if err != nil {
			findings = append(findings, Finding{
				Project:    row.ProjectName,
				CommitHash: row.CommitHash,
				Problem:    err.Error(),
			})
			continue
		}
		if parent != row.ParentHash {
			findings = append(findings, Finding{
				Project:    row.ProjectName,
				CommitHash: row.CommitHash,
				Problem:    fmt.Sprintf("parent mismatch: clone has %s, export has %s", parent, row.ParentHash),
			})
		}
	}
	return findings, nil
}
