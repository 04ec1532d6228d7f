package export_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thomsch/export-lltc4j/internal/domain"
	"github.com/Thomsch/export-lltc4j/internal/usecase/export"
)

// fakeSource is an in-memory Source for exercising the exporter.
type fakeSource struct {
	projects    []domain.Project
	vcsSystems  map[string]domain.VCSSystem   // by project ID
	commits     map[string][]domain.Commit    // by VCS system ID
	fileActions map[string][]domain.FileAction // by commit ID
	files       map[string]domain.File        // by file ID
	hunks       map[string][]domain.Hunk      // by file action ID
}

func (s *fakeSource) Projects(_ context.Context, names []string) ([]domain.Project, error) {
	wanted := map[string]bool{}
	for _, name := range names {
		wanted[name] = true
	}
	var out []domain.Project
	for _, p := range s.projects {
		if len(names) == 0 || wanted[p.Name] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeSource) VCSSystem(_ context.Context, projectID string) (domain.VCSSystem, error) {
	vcs, ok := s.vcsSystems[projectID]
	if !ok {
		return domain.VCSSystem{}, fmt.Errorf("no vcs system for project %s", projectID)
	}
	return vcs, nil
}

func (s *fakeSource) ForEachCommit(_ context.Context, vcsSystemID string, fn func(domain.Commit) error) error {
	for _, commit := range s.commits[vcsSystemID] {
		if err := fn(commit); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSource) FileActions(_ context.Context, commitID string) ([]domain.FileAction, error) {
	return s.fileActions[commitID], nil
}

func (s *fakeSource) File(_ context.Context, fileID string) (domain.File, error) {
	file, ok := s.files[fileID]
	if !ok {
		return domain.File{}, fmt.Errorf("unknown file %s", fileID)
	}
	return file, nil
}

func (s *fakeSource) Hunks(_ context.Context, fileActionID string) ([]domain.Hunk, error) {
	return s.hunks[fileActionID], nil
}

// capturingWriters record artifacts instead of touching disk.
type capturingTruth struct {
	artifacts []export.GroundTruthArtifact
}

func (w *capturingTruth) Write(_ context.Context, artifact export.GroundTruthArtifact) (string, error) {
	w.artifacts = append(w.artifacts, artifact)
	return artifact.Project + "/truth.csv", nil
}

type capturingCommits struct {
	artifact export.CommitListArtifact
}

func (w *capturingCommits) Write(_ context.Context, artifact export.CommitListArtifact) (string, error) {
	w.artifact = artifact
	return "lltc4j-commits.csv", nil
}

func bugfixHunk() []domain.Hunk {
	return []domain.Hunk{{
		OldStart:      10,
		OldLines:      1,
		NewStart:      10,
		NewLines:      1,
		Content:       "- broken\n+ fixed",
		LinesVerified: map[string][]int{"bugfix": {0, 1}},
	}}
}

// newFixtureSource builds a snapshot with one project and three commits:
// an eligible bugfix touching Java code, a merge commit, and an eligible
// bugfix touching only a test file.
func newFixtureSource() *fakeSource {
	return &fakeSource{
		projects: []domain.Project{{ID: "p1", Name: "ant-ivy"}},
		vcsSystems: map[string]domain.VCSSystem{
			"p1": {ID: "v1", ProjectID: "p1", URL: "https://github.com/apache/ant-ivy.git"},
		},
		commits: map[string][]domain.Commit{
			"v1": {
				{ID: "c1", VCSSystemID: "v1", RevisionHash: "abc123def", ValidatedBugfix: true, Parents: []string{"parent1"}},
				{ID: "c2", VCSSystemID: "v1", RevisionHash: "fff000aaa", ValidatedBugfix: true, Parents: []string{"m1", "m2"}},
				{ID: "c3", VCSSystemID: "v1", RevisionHash: "00ff00ff0", ValidatedBugfix: true, Parents: []string{"parent3"}},
			},
		},
		fileActions: map[string][]domain.FileAction{
			"c1": {{ID: "fa1", CommitID: "c1", FileID: "f1"}},
			"c2": {{ID: "fa2", CommitID: "c2", FileID: "f1"}},
			"c3": {{ID: "fa3", CommitID: "c3", FileID: "f2"}},
		},
		files: map[string]domain.File{
			"f1": {ID: "f1", Path: "src/main/java/org/apache/ivy/Ivy.java"},
			"f2": {ID: "f2", Path: "src/test/java/org/apache/ivy/IvyTest.java"},
		},
		hunks: map[string][]domain.Hunk{
			"fa1": bugfixHunk(),
			"fa2": bugfixHunk(),
			"fa3": bugfixHunk(),
		},
	}
}

func TestExport_FiltersIneligibleCommitsAndTestFiles(t *testing.T) {
	truth := &capturingTruth{}
	commits := &capturingCommits{}
	exporter := export.NewExporter(export.Deps{
		Source:  newFixtureSource(),
		Truth:   truth,
		Commits: commits,
	})

	result, err := exporter.Export(context.Background(), export.Request{OutputDir: "out"})
	require.NoError(t, err)

	// Only c1 qualifies: c2 is a merge, c3 only touches a test file.
	assert.Equal(t, 1, result.ExportedCommits)
	require.Len(t, truth.artifacts, 1)
	assert.Equal(t, "abc123def", truth.artifacts[0].CommitHash)
	assert.Equal(t, "ant-ivy", truth.artifacts[0].Project)
	require.Len(t, truth.artifacts[0].Rows, 2)
	assert.Equal(t, "src/main/java/org/apache/ivy/Ivy.java", truth.artifacts[0].Rows[0].File)

	require.Len(t, commits.artifact.Rows, 1)
	assert.Equal(t, export.CommitRow{
		ProjectName: "ant-ivy",
		VCSURL:      "https://github.com/apache/ant-ivy.git",
		CommitHash:  "abc123def",
		ParentHash:  "parent1",
	}, commits.artifact.Rows[0])

	assert.Equal(t, []export.ProjectCount{{Name: "ant-ivy", Commits: 1}}, result.Projects)
}

func TestExport_NumberStopsEarly(t *testing.T) {
	source := newFixtureSource()
	// Make all three commits exportable.
	source.commits["v1"][1].Parents = []string{"m1"}
	source.fileActions["c3"][0].FileID = "f1"

	truth := &capturingTruth{}
	exporter := export.NewExporter(export.Deps{
		Source:  source,
		Truth:   truth,
		Commits: &capturingCommits{},
	})

	result, err := exporter.Export(context.Background(), export.Request{OutputDir: "out", Number: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ExportedCommits)
	assert.Len(t, truth.artifacts, 2)
}

func TestExport_ProjectSelection(t *testing.T) {
	source := newFixtureSource()
	commits := &capturingCommits{}
	exporter := export.NewExporter(export.Deps{
		Source:  source,
		Truth:   &capturingTruth{},
		Commits: commits,
	})

	result, err := exporter.Export(context.Background(), export.Request{
		OutputDir: "out",
		Projects:  []string{"no-such-project"},
	})
	require.NoError(t, err)

	assert.Zero(t, result.ExportedCommits)
	assert.Empty(t, commits.artifact.Rows)
}

func TestExport_InvalidHunkSurfacesCommit(t *testing.T) {
	source := newFixtureSource()
	source.hunks["fa1"] = []domain.Hunk{{
		OldStart:      1,
		NewStart:      1,
		Content:       "+ short",
		LinesVerified: map[string][]int{"bugfix": {5}},
	}}

	exporter := export.NewExporter(export.Deps{
		Source:  source,
		Truth:   &capturingTruth{},
		Commits: &capturingCommits{},
	})

	_, err := exporter.Export(context.Background(), export.Request{OutputDir: "out"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc123def")
}

func TestExport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exporter := export.NewExporter(export.Deps{
		Source:  newFixtureSource(),
		Truth:   &capturingTruth{},
		Commits: &capturingCommits{},
	})

	_, err := exporter.Export(ctx, export.Request{OutputDir: "out"})
	assert.ErrorIs(t, err, context.Canceled)
}
