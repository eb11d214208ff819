package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
	"github.com/traceai/engine/pkg/tools"
)

func runQuery(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	kind := fs.String("kind", "", "filter by node kind (document, component, data_source, data_entity, parameter)")
	name := fs.String("name", "", "filter by name substring")
	limit := fs.Int("limit", 50, "maximum nodes to return (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}

	proj, err := openProject(globals)
	if err != nil {
		return err
	}
	defer proj.Close()

	svc := tools.New(proj.Graph.Snapshot(), proj.Index, proj.Embedder)
	result, err := svc.GraphQuery(tools.GraphQueryArgs{Kind: *kind, NameSubstring: *name, Limit: *limit})
	if err != nil {
		return err
	}

	if globals.JSON {
		return printJSON(result)
	}
	ui.Header.Printf("%d node(s)\n", len(result.Nodes))
	for _, n := range result.Nodes {
		fmt.Printf("  %s  %-12s  %s\n", n.ID, n.Kind, n.Name)
	}
	return nil
}
