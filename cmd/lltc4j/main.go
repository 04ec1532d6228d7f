package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Thomsch/export-lltc4j/internal/adapter/cli"
	gitadapter "github.com/Thomsch/export-lltc4j/internal/adapter/git"
	"github.com/Thomsch/export-lltc4j/internal/adapter/observability"
	csvoutput "github.com/Thomsch/export-lltc4j/internal/adapter/output/csv"
	"github.com/Thomsch/export-lltc4j/internal/adapter/output/markdown"
	"github.com/Thomsch/export-lltc4j/internal/adapter/store/sqlite"
	"github.com/Thomsch/export-lltc4j/internal/config"
	"github.com/Thomsch/export-lltc4j/internal/usecase/export"
	"github.com/Thomsch/export-lltc4j/internal/usecase/inspect"
	"github.com/Thomsch/export-lltc4j/internal/usecase/tangle"
	"github.com/Thomsch/export-lltc4j/internal/usecase/verify"
	"github.com/Thomsch/export-lltc4j/internal/version"
)

// Compile-time checks that the store satisfies every source port.
var (
	_ export.Source  = (*sqlite.Store)(nil)
	_ tangle.Source  = (*sqlite.Store)(nil)
	_ inspect.Source = (*sqlite.Store)(nil)

	_ export.TruthWriter      = (*csvoutput.TruthWriter)(nil)
	_ export.CommitListWriter = (*csvoutput.CommitListWriter)(nil)
	_ export.ReportWriter     = (*markdown.Writer)(nil)
	_ verify.GitEngine        = (*gitadapter.Engine)(nil)
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "lltc4j",
		EnvPrefix:   "LLTC4J",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger, err := buildLogger(cfg.Observability.Logging)
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open snapshot %s: %w", cfg.Store.Path, err)
	}
	defer store.Close()

	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	var reportWriter export.ReportWriter
	if cfg.Output.Report {
		reportWriter = markdown.NewWriter(nowFunc)
	}

	exporter := export.NewExporter(export.Deps{
		Source:   store,
		Truth:    csvoutput.NewTruthWriter(),
		Commits:  csvoutput.NewCommitListWriter(),
		Report:   reportWriter,
		Progress: observability.NewProgress(),
		Logger:   logger,
	})

	gitEngine := gitadapter.NewEngine()

	root := cli.NewRootCommand(cli.Dependencies{
		Exporter:  exporter,
		Tangles:   tangle.NewLister(store),
		Inspector: inspect.NewInspector(store),
		NewChecker: func(reposDir string) cli.CommitChecker {
			return verify.NewChecker(gitEngine, reposDir)
		},
		CommitList:      csvoutput.ReadCommitList,
		TruthGroups:     csvoutput.ReadGroundTruthGroups,
		DefaultOutput:   cfg.Output.Directory,
		DefaultProjects: cfg.Export.Projects,
		DefaultNumber:   cfg.Export.Number,
		DefaultReposDir: cfg.Verify.ReposDir,
		Version:         version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func buildLogger(cfg config.LoggingConfig) (*observability.Logger, error) {
	level, err := observability.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := observability.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return observability.NewLogger(level, format), nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lltc4j"))
	}
	return paths
}
