// Package git resolves commit ancestry in local repository clones
// backed by go-git.
package git

import (
	"context"
	"fmt"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Engine implements the verify.GitEngine port.
type Engine struct{}

// NewEngine constructs a Git engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ParentHash returns the sole parent of commitHash in the repository at
// repoDir. Root and merge commits are errors: the dataset only contains
// validated bug fixes with exactly one parent.
func (e *Engine) ParentHash(ctx context.Context, repoDir, commitHash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := goGit.PlainOpenWithOptions(repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo %s: %w", repoDir, err)
	}

	commit, err := repo.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return "", fmt.Errorf("resolve commit %s: %w", commitHash, err)
	}

	if commit.NumParents() != 1 {
		return "", fmt.Errorf("commit %s has %d parents, want 1", commitHash, commit.NumParents())
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return "", fmt.Errorf("load parent of %s: %w", commitHash, err)
	}
	return parent.Hash.String(), nil
}
