package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
)

// runReset deletes a project's persist_dir entirely. Adapted from the
// teacher's reset.go: destructive, requires --yes, no partial confirm
// prompt.
func runReset(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	confirm := fs.Bool("yes", false, "confirm the reset (required)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: traceai reset --yes")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}
	if !*confirm {
		return apperrors.New(apperrors.InvalidArgument, "reset is destructive").
			WithFix("pass --yes to confirm")
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

	if _, err := os.Stat(persistDir); os.IsNotExist(err) {
		ui.Info.Printf("no local data found for project %s\n", projectID)
		return nil
	}
	if err := os.RemoveAll(persistDir); err != nil {
		return apperrors.Wrap(apperrors.Internal, "delete persist dir", err)
	}
	ui.Success.Printf("reset complete: deleted %s\n", persistDir)
	return nil
}
