package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thomsch/export-lltc4j/internal/domain"
	"github.com/Thomsch/export-lltc4j/internal/groundtruth"
)

// Source provides read access to the mined repository snapshot.
type Source interface {
	// Projects returns the projects matching the given names, in the
	// snapshot's storage order.
	Projects(ctx context.Context, names []string) ([]domain.Project, error)

	// VCSSystem returns the version control system of a project.
	VCSSystem(ctx context.Context, projectID string) (domain.VCSSystem, error)

	// ForEachCommit calls fn for every commit of a VCS system. Iteration
	// stops at the first error returned by fn, which is passed through.
	ForEachCommit(ctx context.Context, vcsSystemID string, fn func(domain.Commit) error) error

	// FileActions returns the file actions of a commit.
	FileActions(ctx context.Context, commitID string) ([]domain.FileAction, error)

	// File returns a file by ID.
	File(ctx context.Context, fileID string) (domain.File, error)

	// Hunks returns the hunks of a file action in storage order.
	Hunks(ctx context.Context, fileActionID string) ([]domain.Hunk, error)
}

// FileLine is one ground-truth row tagged with the file it belongs to.
type FileLine struct {
	File string
	Line domain.LineRecord
}

// GroundTruthArtifact encapsulates one commit's truth.csv inputs.
type GroundTruthArtifact struct {
	OutputDir  string
	Project    string
	CommitHash string
	Rows       []FileLine
}

// CommitRow is one entry of the exported commit list.
type CommitRow struct {
	ProjectName string
	VCSURL      string
	CommitHash  string
	ParentHash  string
}

// CommitListArtifact encapsulates the lltc4j-commits.csv inputs.
type CommitListArtifact struct {
	OutputDir string
	Rows      []CommitRow
}

// ProjectCount pairs a project with its exported commit count.
type ProjectCount struct {
	Name    string
	Commits int
}

// ReportArtifact encapsulates the export report inputs.
type ReportArtifact struct {
	OutputDir string
	Projects  []ProjectCount
	Total     int
}

// TruthWriter persists one commit's ground truth to disk.
type TruthWriter interface {
	Write(ctx context.Context, artifact GroundTruthArtifact) (string, error)
}

// CommitListWriter persists the list of exported commits to disk.
type CommitListWriter interface {
	Write(ctx context.Context, artifact CommitListArtifact) (string, error)
}

// ReportWriter persists the export summary to disk.
type ReportWriter interface {
	Write(ctx context.Context, artifact ReportArtifact) (string, error)
}

// Progress reports scan advancement to the user.
type Progress interface {
	Step(project string, scanned int)
	Done()
}

// Logger defines the structured logging port.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Deps captures the collaborators of the exporter.
type Deps struct {
	Source   Source
	Truth    TruthWriter
	Commits  CommitListWriter
	Report   ReportWriter
	Progress Progress
	Logger   Logger
}

// Request describes one export run.
type Request struct {
	OutputDir string
	// Projects restricts the export to the named projects.
	Projects []string
	// Number stops the export after that many commits; zero exports all.
	Number int
}

// Result summarizes a finished export.
type Result struct {
	ExportedCommits int
	Projects        []ProjectCount
	CommitsCSVPath  string
	ReportPath      string
}

// Exporter drives the LLTC4J export: it walks the snapshot project by
// project, writes one truth.csv per eligible commit with labelled code
// changes, and finishes with the commit list and a summary report.
type Exporter struct {
	deps Deps
}

// NewExporter constructs an exporter from its collaborators.
func NewExporter(deps Deps) *Exporter {
	return &Exporter{deps: deps}
}

// errEnough stops commit iteration once the requested count is reached.
var errEnough = errors.New("requested commit count reached")

// Export runs the export described by req.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	projects, err := e.deps.Source.Projects(ctx, req.Projects)
	if err != nil {
		return Result{}, fmt.Errorf("list projects: %w", err)
	}

	result := Result{}
	var commitRows []CommitRow

	for _, project := range projects {
		e.logInfo(ctx, "processing project", map[string]interface{}{"project": project.Name})

		vcs, err := e.deps.Source.VCSSystem(ctx, project.ID)
		if err != nil {
			return Result{}, fmt.Errorf("vcs system for %s: %w", project.Name, err)
		}

		scanned := 0
		projectCommits := 0
		err = e.deps.Source.ForEachCommit(ctx, vcs.ID, func(commit domain.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if req.Number > 0 && result.ExportedCommits >= req.Number {
				return errEnough
			}

			scanned++
			e.stepProgress(project.Name, scanned)

			if !commit.EligibleBugfix() {
				return nil
			}

			rows, err := e.groundTruthForCommit(ctx, commit)
			if err != nil {
				return fmt.Errorf("commit %s: %w", commit.RevisionHash, err)
			}
			if len(rows) == 0 {
				return nil
			}

			if _, err := e.deps.Truth.Write(ctx, GroundTruthArtifact{
				OutputDir:  req.OutputDir,
				Project:    project.Name,
				CommitHash: commit.RevisionHash,
				Rows:       rows,
			}); err != nil {
				return fmt.Errorf("write ground truth for %s: %w", commit.RevisionHash, err)
			}

			commitRows = append(commitRows, CommitRow{
				ProjectName: project.Name,
				VCSURL:      vcs.URL,
				CommitHash:  commit.RevisionHash,
				ParentHash:  commit.Parents[0],
			})
			result.ExportedCommits++
			projectCommits++
			return nil
		})
		e.finishProgress()

		result.Projects = append(result.Projects, ProjectCount{Name: project.Name, Commits: projectCommits})

		if errors.Is(err, errEnough) {
			break
		}
		if err != nil {
			return Result{}, err
		}
	}

	path, err := e.deps.Commits.Write(ctx, CommitListArtifact{OutputDir: req.OutputDir, Rows: commitRows})
	if err != nil {
		return Result{}, fmt.Errorf("write commit list: %w", err)
	}
	result.CommitsCSVPath = path

	if e.deps.Report != nil {
		path, err := e.deps.Report.Write(ctx, ReportArtifact{
			OutputDir: req.OutputDir,
			Projects:  result.Projects,
			Total:     result.ExportedCommits,
		})
		if err != nil {
			return Result{}, fmt.Errorf("write report: %w", err)
		}
		result.ReportPath = path
	}

	e.logInfo(ctx, "export finished", map[string]interface{}{
		"exportedCommits": result.ExportedCommits,
		"commitsCSV":      result.CommitsCSVPath,
	})
	return result, nil
}

// groundTruthForCommit labels every exportable file change of the commit.
// Commits touching only tests, documentation, or non-Java files come back
// with no rows and are not exported.
func (e *Exporter) groundTruthForCommit(ctx context.Context, commit domain.Commit) ([]FileLine, error) {
	actions, err := e.deps.Source.FileActions(ctx, commit.ID)
	if err != nil {
		return nil, fmt.Errorf("file actions: %w", err)
	}

	var rows []FileLine
	for _, action := range actions {
		file, err := e.changedFile(ctx, action)
		if err != nil {
			return nil, err
		}
		if !domain.IsExportablePath(file.Path) {
			continue
		}

		hunks, err := e.deps.Source.Hunks(ctx, action.ID)
		if err != nil {
			return nil, fmt.Errorf("hunks for %s: %w", file.Path, err)
		}

		records, err := groundtruth.LabelLines(hunks)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", file.Path, err)
		}
		for _, record := range records {
			rows = append(rows, FileLine{File: file.Path, Line: record})
		}
	}
	return rows, nil
}

// changedFile resolves the file a file action refers to. Renames prefer
// the new file, matching the unidiff library used by the evaluation
// framework; deletions fall back to the old file.
func (e *Exporter) changedFile(ctx context.Context, action domain.FileAction) (domain.File, error) {
	id := action.FileID
	if id == "" {
		id = action.OldFileID
	}
	file, err := e.deps.Source.File(ctx, id)
	if err != nil {
		return domain.File{}, fmt.Errorf("resolve file %s: %w", id, err)
	}
	return file, nil
}

func (e *Exporter) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if e.deps.Logger != nil {
		e.deps.Logger.LogInfo(ctx, message, fields)
	}
}

func (e *Exporter) stepProgress(project string, scanned int) {
	if e.deps.Progress != nil {
		e.deps.Progress.Step(project, scanned)
	}
}

func (e *Exporter) finishProgress() {
	if e.deps.Progress != nil {
		e.deps.Progress.Done()
	}
}
