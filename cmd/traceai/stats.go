package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
	"github.com/traceai/engine/pkg/tools"
)

func runStats(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}

	proj, err := openProject(globals)
	if err != nil {
		return err
	}
	defer proj.Close()

	svc := tools.New(proj.Graph.Snapshot(), proj.Index, proj.Embedder)
	stats := svc.GraphStats()

	if globals.JSON {
		return printJSON(stats)
	}
	ui.Header.Println("Graph statistics")
	fmt.Printf("  nodes: %d\n  edges: %d\n", stats.Nodes, stats.Edges)
	for kind, count := range stats.ByKind {
		fmt.Printf("    %s: %d\n", kind, count)
	}
	for kind, count := range stats.ByDocumentKind {
		fmt.Printf("    documents[%s]: %d\n", kind, count)
	}
	return nil
}
