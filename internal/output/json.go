// Package output provides JSON emission helpers shared by every CLI
// subcommand and by the tool surface when invoked in --json mode,
// adapted from the teacher's internal/output package.
package output

import (
	"encoding/json"
	"io"
	"os"
)

// JSON writes data to stdout as pretty-printed (2-space indent) JSON.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// JSONCompact writes data to stdout as single-line JSON.
func JSONCompact(data any) error {
	return JSONCompactTo(os.Stdout, data)
}

// JSONCompactTo writes data as single-line JSON to w.
func JSONCompactTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(data)
}

// JSONError writes err (any value, typically *errors.TraceError) to
// stderr as JSON, for --json mode failure paths.
func JSONError(err error) error {
	type errEnvelope struct {
		Error string `json:"error"`
	}
	return JSONTo(os.Stderr, errEnvelope{Error: err.Error()})
}
