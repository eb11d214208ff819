package main

import "github.com/traceai/engine/internal/output"

// printJSON writes data to stdout as pretty JSON, the shape every
// subcommand's --json mode uses.
func printJSON(data any) error {
	return output.JSON(data)
}
