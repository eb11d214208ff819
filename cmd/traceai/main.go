// Package main implements the traceai CLI: a thin collaborator over the
// ingestion coordinator, graph query engine, and vector index (spec
// §6), adapted from the teacher's cmd/cie layout (one file per
// subcommand, a shared GlobalFlags, pflag-based parsing).
//
// Usage:
//
//	traceai init --project-id=<id>         Create a project
//	traceai ingest <dir> [--pattern=...]    Ingest a directory of artifacts
//	traceai stats                          Show graph statistics
//	traceai trace <entity> [--direction=]  Trace lineage for an entity
//	traceai impact <entity>                Analyze change impact
//	traceai search <text>                  Semantic search over components/entities
//	traceai query [--kind=] [--name=]      Structural node lookup
//	traceai reset --yes                    Delete local project data
//	traceai completion bash                Print a shell completion script
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	apperrors "github.com/traceai/engine/internal/errors"
)

var (
	version = "dev"
	commit  = "unknown"
)

// GlobalFlags carries the flags every subcommand accepts, parsed once in
// main before the subcommand's own FlagSet takes the remaining args.
// Mirrors the teacher's GlobalFlags (cmd/cie/start.go).
type GlobalFlags struct {
	JSON       bool
	Quiet      bool
	NoColor    bool
	ProjectID  string
	PersistDir string
}

func main() {
	root := flag.NewFlagSet("traceai", flag.ContinueOnError)
	showVersion := root.Bool("version", false, "show version and exit")
	globals := GlobalFlags{}
	root.BoolVar(&globals.JSON, "json", false, "emit machine-readable JSON")
	root.BoolVar(&globals.Quiet, "quiet", false, "suppress progress output")
	root.BoolVar(&globals.NoColor, "no-color", false, "disable colored output")
	root.StringVar(&globals.ProjectID, "project-id", "", "project identifier")
	root.StringVar(&globals.PersistDir, "persist-dir", "", "project persist directory (default ~/.traceai/projects/<project-id>)")
	root.Usage = printUsage

	if err := root.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if globals.NoColor {
		color.NoColor = true
	}
	if *showVersion {
		fmt.Printf("traceai version %s (%s)\n", version, commit)
		return
	}

	args := root.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "init":
		err = runInit(rest, globals)
	case "ingest":
		err = runIngest(rest, globals)
	case "stats":
		err = runStats(rest, globals)
	case "trace":
		err = runTrace(rest, globals)
	case "impact":
		err = runImpact(rest, globals)
	case "search":
		err = runSearch(rest, globals)
	case "query":
		err = runQuery(rest, globals)
	case "reset":
		err = runReset(rest, globals)
	case "completion":
		err = runCompletion(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		exitWithError(err, globals)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `traceai - ETL lineage and impact analysis engine

Usage:
  traceai <command> [options]

Commands:
  init       Create a project (traceai.yaml under --persist-dir)
  ingest     Ingest a directory of SSIS/COBOL/JCL/JSON/Excel/CSV artifacts
  stats      Show graph statistics
  trace      Trace upstream/downstream lineage for an entity
  impact     Show readers/writers of an entity (one-hop impact)
  search     Semantic search over components and data entities
  query      Structural node lookup by kind/name substring
  reset      Delete local project data
  completion Print a shell completion script

Global Options:
  --project-id   project identifier
  --persist-dir  project persist directory
  --json         emit machine-readable JSON
  --quiet        suppress progress output
  --no-color     disable colored output
  --version      show version and exit
`)
}

// exitWithError prints err (colored/plain, or JSON in --json mode) and
// exits with the spec §7 exit code for its Kind, mirroring the teacher's
// error-handling convention at every subcommand's call site.
func exitWithError(err error, globals GlobalFlags) {
	te, ok := err.(*apperrors.TraceError)
	if !ok {
		te = apperrors.Wrap(apperrors.Internal, "command failed", err)
	}
	if globals.JSON {
		data, _ := te.ToJSON()
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintln(os.Stderr, te.Format())
	}
	os.Exit(te.Kind.ExitCode())
}
