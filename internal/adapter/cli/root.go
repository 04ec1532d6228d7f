// Package cli wires the export commands behind a Cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thomsch/export-lltc4j/internal/groundtruth"
	"github.com/Thomsch/export-lltc4j/internal/usecase/count"
	"github.com/Thomsch/export-lltc4j/internal/usecase/export"
	"github.com/Thomsch/export-lltc4j/internal/usecase/inspect"
	"github.com/Thomsch/export-lltc4j/internal/usecase/tangle"
	"github.com/Thomsch/export-lltc4j/internal/usecase/verify"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Exporter defines the dependency required to run the export command.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

// TangleLister defines the dependency required to run the tangled command.
type TangleLister interface {
	List(ctx context.Context, projects []string, granularity tangle.Granularity) ([]tangle.Row, error)
}

// LabelInspector defines the dependency required to run the inspect command.
type LabelInspector interface {
	Inspect(ctx context.Context, revisionHash string) (inspect.CommitLabels, error)
}

// CommitChecker defines the dependency required to run the verify command.
type CommitChecker interface {
	Check(ctx context.Context, rows []verify.Row) ([]verify.Finding, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Exporter    Exporter
	Tangles     TangleLister
	Inspector   LabelInspector
	NewChecker  func(reposDir string) CommitChecker
	CommitList  func(path string) ([]export.CommitRow, error)
	TruthGroups count.GroupsReader
	Args        Arguments

	DefaultOutput   string
	DefaultProjects []string
	DefaultNumber   int
	DefaultReposDir string
	Version         string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "lltc4j",
		Short: "Export the LLTC4J line-level tangled change dataset",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(exportCommand(deps))
	root.AddCommand(tangledCommand(deps))
	root.AddCommand(inspectCommand(deps))
	root.AddCommand(countCommand(deps))
	root.AddCommand(verifyCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func exportCommand(deps Dependencies) *cobra.Command {
	var outputDir string
	var projects []string
	var number int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one ground truth file per validated bugfix commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(outputDir)
			if err != nil {
				return fmt.Errorf("output directory %s does not exist", outputDir)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", outputDir)
			}

			result, err := deps.Exporter.Export(cmd.Context(), export.Request{
				OutputDir: outputDir,
				Projects:  projects,
				Number:    number,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d commits to %s\n", result.ExportedCommits, outputDir)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit list written to %s\n", result.CommitsCSVPath)
			if result.ReportPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", result.ReportPath)
			}
			return nil
		},
	}

	defaultOutput := deps.DefaultOutput
	if defaultOutput == "" {
		defaultOutput = "out"
	}
	cmd.Flags().StringVarP(&outputDir, "outdir", "o", defaultOutput, "Directory to write the dataset into (must exist)")
	cmd.Flags().StringSliceVar(&projects, "projects", deps.DefaultProjects, "Projects to export")
	cmd.Flags().IntVarP(&number, "number", "n", deps.DefaultNumber, "Stop after this many commits (0 exports all)")

	return cmd
}

func tangledCommand(deps Dependencies) *cobra.Command {
	var projects []string

	cmd := &cobra.Command{
		Use:   "tangled [line|hunk]",
		Short: "List commits with tangled changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			granularity := tangle.GranularityLine
			if len(args) > 0 {
				granularity = tangle.Granularity(args[0])
			}

			rows, err := deps.Tangles.List(cmd.Context(), projects, granularity)
			if err != nil {
				return err
			}

			for _, row := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", row.Project, row.CommitHash, row.Count)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d commits with tangled %ss\n", len(rows), granularity)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&projects, "projects", deps.DefaultProjects, "Projects to scan")

	return cmd
}

func inspectCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <commit-list>",
		Short: "Show the manual labels attached to exported commits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commits, err := deps.CommitList(args[0])
			if err != nil {
				return err
			}

			for _, commit := range commits {
				labels, err := deps.Inspector.Inspect(cmd.Context(), commit.CommitHash)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", labels.CommitHash)
				fmt.Fprintf(cmd.OutOrStdout(), "labels: %v\n", labels.Labels)
				for _, line := range labels.Lines {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", line.Label, line.Line)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

func countCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <export-dir>",
		Short: "Tally exported commits by change type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := count.Tally(args[0], deps.TruthGroups)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", result.Total)
			kinds := []groundtruth.ChangeKind{
				groundtruth.ChangeFix,
				groundtruth.ChangeOther,
				groundtruth.ChangeMixed,
				groundtruth.ChangeEmpty,
			}
			for _, kind := range kinds {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", kind, result.Kinds[kind])
			}
			return nil
		},
	}

	return cmd
}

func verifyCommand(deps Dependencies) *cobra.Command {
	var reposDir string

	cmd := &cobra.Command{
		Use:   "verify <commit-list>",
		Short: "Check an exported commit list against local clones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commits, err := deps.CommitList(args[0])
			if err != nil {
				return err
			}

			rows := make([]verify.Row, 0, len(commits))
			for _, commit := range commits {
				rows = append(rows, verify.Row{
					ProjectName: commit.ProjectName,
					CommitHash:  commit.CommitHash,
					ParentHash:  commit.ParentHash,
				})
			}

			findings, err := deps.NewChecker(reposDir).Check(cmd.Context(), rows)
			if err != nil {
				return err
			}

			for _, finding := range findings {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", finding.Project, finding.CommitHash, finding.Problem)
			}
			if len(findings) > 0 {
				return fmt.Errorf("%d of %d commits failed verification", len(findings), len(rows))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "All %d commits verified\n", len(rows))
			return nil
		},
	}

	defaultReposDir := deps.DefaultReposDir
	if defaultReposDir == "" {
		defaultReposDir = "repositories"
	}
	cmd.Flags().StringVar(&reposDir, "repos-dir", defaultReposDir, "Directory holding one clone per project")

	return cmd
}
