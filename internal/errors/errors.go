// Package errors defines TraceAI's closed error-kind taxonomy (spec §7)
// and a structured TraceError type carrying a human-facing message, an
// optional fix suggestion, and a Kind that maps to a CLI exit code,
// adapted from the teacher's internal/errors package.
package errors

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

// Kind is the closed set of error categories spec §7 defines.
type Kind string

const (
	InvalidArgument   Kind = "InvalidArgument"
	UnsupportedFormat Kind = "UnsupportedFormat"
	MalformedInput    Kind = "MalformedInput"
	PartialParse      Kind = "PartialParse"
	UnknownEntity     Kind = "UnknownEntity"
	LimitExceeded     Kind = "LimitExceeded"
	Conflict          Kind = "Conflict"
	Cancelled         Kind = "Cancelled"
	DeadlineExceeded  Kind = "DeadlineExceeded"
	Internal          Kind = "Internal"
)

// ExitCode maps an error Kind to the CLI exit code spec §6 specifies.
// Kinds not named there (Conflict is internal-only; everything else
// unrecognized) fall back to 1, a generic failure.
func (k Kind) ExitCode() int {
	switch k {
	case InvalidArgument:
		return 2
	case UnknownEntity:
		return 3
	case PartialParse:
		return 4
	default:
		return 1
	}
}

// TraceError is the structured error type returned by every public
// TraceAI operation. It carries enough detail for a CLI to print a
// helpful message and for a planner to branch on Kind programmatically.
type TraceError struct {
	Kind    Kind
	Message string
	Fix     string
	Fields  map[string]string // field-level detail for InvalidArgument
	Cause   error
}

func (e *TraceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TraceError) Unwrap() error { return e.Cause }

// New constructs a TraceError of the given kind.
func New(kind Kind, message string) *TraceError {
	return &TraceError{Kind: kind, Message: message}
}

// Wrap constructs a TraceError wrapping a lower-level cause.
func Wrap(kind Kind, message string, cause error) *TraceError {
	return &TraceError{Kind: kind, Message: message, Cause: cause}
}

// WithFix attaches a remediation hint, mirroring the teacher's Fix field.
func (e *TraceError) WithFix(fix string) *TraceError {
	e.Fix = fix
	return e
}

// WithField attaches a field-level detail, used for InvalidArgument.
func (e *TraceError) WithField(name, detail string) *TraceError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[name] = detail
	return e
}

// Format renders the error for terminal display, colored per the
// teacher's internal/ui convention (red for the message, dim for the
// fix), honoring NO_COLOR via fatih/color's global state.
func (e *TraceError) Format() string {
	red := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)
	out := red.Sprintf("error: ") + e.Message
	if e.Cause != nil {
		out += fmt.Sprintf(" (%v)", e.Cause)
	}
	if e.Fix != "" {
		out += "\n" + dim.Sprintf("fix: %s", e.Fix)
	}
	return out
}

// jsonError is the wire shape for --json mode.
type jsonError struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fix     string            `json:"fix,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ToJSON serializes the error for --json CLI output.
func (e *TraceError) ToJSON() ([]byte, error) {
	return json.MarshalIndent(jsonError{
		Kind:    string(e.Kind),
		Message: e.Message,
		Fix:     e.Fix,
		Fields:  e.Fields,
	}, "", "  ")
}

// As reports whether err is a *TraceError of the given kind.
func As(err error, kind Kind) bool {
	te, ok := err.(*TraceError)
	return ok && te.Kind == kind
}
