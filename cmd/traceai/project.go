package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/traceai/engine/internal/bootstrap"
	apperrors "github.com/traceai/engine/internal/errors"
)

// resolveProjectID falls back to the current directory's base name, the
// way the teacher's init.go defaults --project-id to the repo directory.
func resolveProjectID(globals GlobalFlags) (string, error) {
	if globals.ProjectID != "" {
		return globals.ProjectID, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "get working directory", err)
	}
	return filepath.Base(cwd), nil
}

// openProject opens an already-initialized project for query/ingest
// subcommands, translating a missing project into InvalidArgument with a
// fix pointing at 'traceai init'.
func openProject(globals GlobalFlags) (*bootstrap.Project, error) {
	projectID, err := resolveProjectID(globals)
	if err != nil {
		return nil, err
	}
	persistDir := globals.PersistDir
	if persistDir == "" {
		persistDir, err = defaultPersistDir(projectID)
		if err != nil {
			return nil, err
		}
	}
	proj, err := bootstrap.OpenProject(persistDir, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, fmt.Sprintf("project %q not found", projectID), err).
			WithFix("run 'traceai init --project-id=" + projectID + "' first")
	}
	return proj, nil
}

func defaultPersistDir(projectID string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "get home directory", err)
	}
	return filepath.Join(homeDir, ".traceai", "projects", projectID), nil
}
