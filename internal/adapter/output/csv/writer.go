package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Thomsch/export-lltc4j/internal/usecase/export"
)

const (
	// TruthFileName is the per-commit ground truth file.
	TruthFileName = "truth.csv"
	// CommitListFileName is the dataset-wide commit index.
	CommitListFileName = "lltc4j-commits.csv"
)

var (
	truthHeader      = []string{"file", "source", "target", "group"}
	commitListHeader = []string{"project_name", "vcs_url", "commit_hash", "parent_hash"}
)

// TruthWriter persists one commit's ground truth as
// <outdir>/<project>_<hash prefix>/truth.csv.
type TruthWriter struct{}

// NewTruthWriter constructs a ground truth writer.
func NewTruthWriter() *TruthWriter {
	return &TruthWriter{}
}

// Write implements the export.TruthWriter port.
func (w *TruthWriter) Write(_ context.Context, artifact export.GroundTruthArtifact) (string, error) {
	dir := filepath.Join(artifact.OutputDir, fmt.Sprintf("%s_%s", artifact.Project, shortHash(artifact.CommitHash)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create commit dir: %w", err)
	}

	path := filepath.Join(dir, TruthFileName)
	rows := make([][]string, 0, len(artifact.Rows))
	for _, row := range artifact.Rows {
		rows = append(rows, []string{
			row.File,
			formatLineNumber(row.Line.Source),
			formatLineNumber(row.Line.Target),
			string(row.Line.Group),
		})
	}

	if err := writeCSV(path, truthHeader, rows); err != nil {
		return "", err
	}
	return path, nil
}

// CommitListWriter persists the exported commit index at the root of the
// output directory.
type CommitListWriter struct{}

// NewCommitListWriter constructs a commit list writer.
func NewCommitListWriter() *CommitListWriter {
	return &CommitListWriter{}
}

// Write implements the export.CommitListWriter port.
func (w *CommitListWriter) Write(_ context.Context, artifact export.CommitListArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(artifact.OutputDir, CommitListFileName)
	rows := make([][]string, 0, len(artifact.Rows))
	for _, row := range artifact.Rows {
		rows = append(rows, []string{row.ProjectName, row.VCSURL, row.CommitHash, row.ParentHash})
	}

	if err := writeCSV(path, commitListHeader, rows); err != nil {
		return "", err
	}
	return path, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	return file.Close()
}

// formatLineNumber renders an optional line number; absent numbers stay
// empty, matching the dataset's CSV convention.
func formatLineNumber(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// shortHash abbreviates a commit hash for directory names.
func shortHash(hash string) string {
	if len(hash) <= 6 {
		return hash
	}
	return hash[:6]
}
