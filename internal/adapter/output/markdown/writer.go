// Package markdown renders the export report.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Thomsch/export-lltc4j/internal/usecase/export"
)

type clock func() string

// ReportFileName is the export summary written next to the commit index.
const ReportFileName = "lltc4j-report.md"

// Writer renders an export summary into a Markdown file.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write implements the export.ReportWriter port.
func (w *Writer) Write(ctx context.Context, artifact export.ReportArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(artifact.OutputDir, ReportFileName)
	if err := os.WriteFile(path, []byte(buildContent(artifact, w.now())), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

func buildContent(artifact export.ReportArtifact, timestamp string) string {
	var builder strings.Builder
	caser := cases.Title(language.English)
	builder.WriteString("# LLTC4J Export Report\n\n")
	builder.WriteString(fmt.Sprintf("- Generated: %s\n", timestamp))
	builder.WriteString(fmt.Sprintf("- Exported commits: %d\n\n", artifact.Total))

	if len(artifact.Projects) == 0 {
		builder.WriteString("No projects exported.\n")
		return builder.String()
	}

	builder.WriteString("## Commits Per Project\n\n")
	builder.WriteString("| Project | Commits |\n")
	builder.WriteString("| --- | --- |\n")
	for _, project := range artifact.Projects {
		builder.WriteString(fmt.Sprintf("| %s | %d |\n", caser.String(projectTitle(project.Name)), project.Commits))
	}

	return builder.String()
}

// projectTitle turns a repository slug into readable words.
func projectTitle(name string) string {
	return strings.ReplaceAll(name, "-", " ")
}
