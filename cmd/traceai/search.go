package main

import (
	"context"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/internal/ui"
	"github.com/traceai/engine/pkg/tools"
)

// parseFilterFlags turns repeated --filter key=value flags into a metadata
// equality predicate for semantic_search.
func parseFilterFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, apperrors.New(apperrors.InvalidArgument, "filter must be key=value, got "+pair)
		}
		filter[key] = value
	}
	return filter, nil
}

func runSearch(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	topK := fs.Int("k", 10, "number of results to return")
	filterFlags := fs.StringArray("filter", nil, "metadata equality filter key=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "parse flags", err)
	}
	if fs.NArg() != 1 {
		return apperrors.New(apperrors.InvalidArgument, "search requires exactly one <text> argument")
	}
	text := fs.Arg(0)
	filter, err := parseFilterFlags(*filterFlags)
	if err != nil {
		return err
	}

	proj, err := openProject(globals)
	if err != nil {
		return err
	}
	defer proj.Close()

	svc := tools.New(proj.Graph.Snapshot(), proj.Index, proj.Embedder)
	result, err := svc.SemanticSearch(context.Background(), tools.SemanticSearchArgs{Query: text, TopK: *topK, Filter: filter})
	if err != nil {
		return err
	}

	if globals.JSON {
		return printJSON(result)
	}
	ui.Header.Printf("Semantic search: %q\n", text)
	for _, hit := range result.Hits {
		fmt.Printf("  %.4f  %s  %s\n", hit.Similarity, hit.ID, hit.Text)
	}
	return nil
}
