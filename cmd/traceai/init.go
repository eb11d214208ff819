package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/traceai/engine/internal/bootstrap"
	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
)

func runInit(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	embeddingDims := fs.Int("embedding-dimensions", 0, "embedding vector size (default 16)")
	maxConcurrent := fs.Int("max-concurrent-parsers", 0, "ingestion worker pool size (default 10)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: traceai init --project-id=<id> [options]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}

	projectID, err := resolveProjectID(globals)
	if err != nil {
		return err
	}
	persistDir := globals.PersistDir
	if persistDir == "" {
		persistDir, err = defaultPersistDir(projectID)
		if err != nil {
			return err
		}
	}

	proj, err := bootstrap.InitProject(bootstrap.ProjectConfig{
		ProjectID:            projectID,
		PersistDir:           persistDir,
		EmbeddingDimensions:  *embeddingDims,
		MaxConcurrentParsers: *maxConcurrent,
	}, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "init project", err)
	}
	defer proj.Close()

	if globals.JSON {
		return printJSON(map[string]any{
			"project_id":  proj.Config.ProjectID,
			"persist_dir": proj.Config.PersistDir,
		})
	}
	ui.Success.Printf("Initialized project %s at %s\n", proj.Config.ProjectID, proj.Config.PersistDir)
	return nil
}
