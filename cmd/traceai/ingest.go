package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
	"github.com/traceai/engine/pkg/ingestion"
	"github.com/traceai/engine/pkg/parsers"
)

func runIngest(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	pattern := fs.StringArray("pattern", nil, "include glob (relative to <dir>), repeatable; default **/*")
	exclude := fs.StringArray("exclude", nil, "exclude glob, repeatable")
	maxConcurrent := fs.Int("max-concurrent", 0, "bounded worker pool size (0 = the project's max_concurrent_parsers)")
	skipUnchanged := fs.Bool("skip-unchanged", true, "skip files whose content hash matches the last run's checkpoint")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: traceai ingest <dir> [--pattern=glob]... [--exclude=glob]...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}
	if fs.NArg() != 1 {
		return apperrors.New(apperrors.InvalidArgument, "ingest requires exactly one <dir> argument").
			WithFix("traceai ingest <dir>")
	}
	rootDir := fs.Arg(0)

	proj, err := openProject(globals)
	if err != nil {
		return err
	}
	defer proj.Close()

	if *maxConcurrent <= 0 {
		*maxConcurrent = proj.Config.MaxConcurrentParsers
	}

	checkpointDir := proj.Config.PersistDir
	cfg := ingestion.Config{
		ProjectID:     proj.Config.ProjectID,
		RootDir:       rootDir,
		IncludeGlobs:  *pattern,
		ExcludeGlobs:  *exclude,
		MaxConcurrent: *maxConcurrent,
		CheckpointDir: checkpointDir,
		SkipUnchanged: *skipUnchanged,
	}
	coordinator := ingestion.NewCoordinator(cfg, parsers.DefaultRegistry(), proj.Graph, proj.Index, proj.Embedder, nil)

	bar := newProgressBar(globals, -1, "ingesting")

	report, err := coordinator.Run(context.Background())
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "ingestion failed", err)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := proj.Save(); err != nil {
		return apperrors.Wrap(apperrors.Internal, "save graph snapshot", err)
	}

	if globals.JSON {
		if err := printJSON(report); err != nil {
			return apperrors.Wrap(apperrors.Internal, "encode report", err)
		}
	} else {
		printIngestReport(report)
	}

	if report.ParseErrors > 0 {
		return apperrors.New(apperrors.PartialParse,
			fmt.Sprintf("%d of %d admitted files failed to parse", report.ParseErrors, report.DocumentsAdmitted))
	}
	return nil
}

func printIngestReport(report *ingestion.RunReport) {
	ui.Header.Println("Ingestion complete")
	fmt.Printf("  discovered: %d\n", report.DocumentsDiscovered)
	fmt.Printf("  admitted:   %d\n", report.DocumentsAdmitted)
	fmt.Printf("  committed:  %d\n", report.DocumentsCommitted)
	fmt.Printf("  unchanged:  %d\n", report.DocumentsUnchanged)
	fmt.Printf("  skipped:    %d\n", report.DocumentsSkipped)
	if report.ParseErrors > 0 {
		ui.Warning.Printf("  parse errors: %d (rate %.1f%%)\n", report.ParseErrors, report.ParseErrorRate*100)
		for _, detail := range report.ParseErrorDetails {
			fmt.Printf("    - %s\n", detail)
		}
	}
	if len(report.Unresolved) > 0 {
		ui.Warning.Printf("  unresolved references: %d\n", len(report.Unresolved))
	}
	fmt.Printf("  duration: %s\n", report.TotalDuration)
}
