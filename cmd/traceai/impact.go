package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
	"github.com/traceai/engine/pkg/tools"
)

func runImpact(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("impact", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}
	if fs.NArg() != 1 {
		return apperrors.New(apperrors.InvalidArgument, "impact requires exactly one <entity> argument")
	}
	entity := fs.Arg(0)

	proj, err := openProject(globals)
	if err != nil {
		return err
	}
	defer proj.Close()

	svc := tools.New(proj.Graph.Snapshot(), proj.Index, proj.Embedder)
	result, err := svc.AnalyzeImpact(entity)
	if err != nil {
		return err
	}

	if globals.JSON {
		return printJSON(result)
	}
	ui.Header.Printf("Impact for %s (total=%d)\n", entity, result.Total)
	fmt.Println("  readers:")
	for _, n := range result.Readers {
		fmt.Printf("    %s\n", n.Name)
	}
	fmt.Println("  writers:")
	for _, n := range result.Writers {
		fmt.Printf("    %s\n", n.Name)
	}
	return nil
}
