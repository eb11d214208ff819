package main

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
	"github.com/traceai/engine/pkg/query"
	"github.com/traceai/engine/pkg/tools"
)

func runTrace(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	direction := fs.String("direction", "both", "upstream, downstream, or both")
	maxDepth := fs.Int("max-depth", 8, "maximum traversal depth")
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}
	if fs.NArg() != 1 {
		return apperrors.New(apperrors.InvalidArgument, "trace requires exactly one <entity> argument")
	}
	entity := fs.Arg(0)

	proj, err := openProject(globals)
	if err != nil {
		return err
	}
	defer proj.Close()

	svc := tools.New(proj.Graph.Snapshot(), proj.Index, proj.Embedder)
	result, err := svc.TraceLineage(context.Background(), tools.TraceLineageArgs{
		EntityName: entity, Direction: *direction, MaxDepth: *maxDepth,
	})
	if err != nil {
		return err
	}

	if globals.JSON {
		return printJSON(result)
	}
	ui.Header.Printf("Lineage for %s\n", entity)
	printNodesAtDepth("upstream", result.Upstream)
	printNodesAtDepth("downstream", result.Downstream)
	if result.Truncated {
		ui.Warning.Println("  (results truncated at traversal limit)")
	}
	return nil
}

func printNodesAtDepth(label string, nodes []query.NodeAtDepth) {
	if len(nodes) == 0 {
		return
	}
	fmt.Printf("  %s:\n", label)
	for _, n := range nodes {
		fmt.Printf("    [%d] %s (%s)\n", n.Depth, n.Node.Name, n.Node.Kind)
	}
}
