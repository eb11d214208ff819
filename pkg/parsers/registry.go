package parsers

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// Parser is the interface every per-format parser implements. It must be
// safe to call concurrently on distinct paths and must not retain
// mutable state between calls, per spec §4.3.
type Parser interface {
	// Parse turns file bytes at path into a ParsedDocument. Fatal
	// failures (UnsupportedVersion, MalformedInput) return a nil
	// document and a non-nil error of the matching Kind. Partial
	// success returns a non-nil document with Warnings populated.
	Parse(ctx context.Context, path string, data []byte) (*ir.ParsedDocument, error)

	// Validate performs a cheap header sniff so the coordinator can
	// skip malformed files without paying full parse cost.
	Validate(path string, data []byte) bool
}

// Registry maps file extensions (case-insensitive) to a single Parser.
// Assembled once at startup and read-only thereafter, per spec §5.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Parser)}
}

// Register associates every extension in extensions (e.g. ".dtsx") with
// parser. Extension matching is case-insensitive. Registering an
// extension twice is a DuplicateRegistration error.
func (r *Registry) Register(extensions []string, parser Parser) error {
	for _, ext := range extensions {
		key := strings.ToLower(ext)
		if _, exists := r.byExt[key]; exists {
			return apperrors.New(apperrors.InvalidArgument,
				fmt.Sprintf("DuplicateRegistration: extension %q already registered", key))
		}
		r.byExt[key] = parser
	}
	return nil
}

// ParserFor dispatches by extension (case-insensitive). Returns nil, false
// if no parser is registered for path's extension.
func (r *Registry) ParserFor(path string) (Parser, bool) {
	ext := extensionOf(path)
	p, ok := r.byExt[ext]
	return p, ok
}

// Validate reports whether path's registered parser (if any) considers
// data well-formed enough to attempt a full parse.
func (r *Registry) Validate(path string, data []byte) bool {
	p, ok := r.ParserFor(path)
	if !ok {
		return false
	}
	return p.Validate(path, data)
}

func extensionOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(path[idx:])
}

// DefaultRegistry wires up all six format parsers with their standard
// extensions, matching spec §4.3.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register([]string{".dtsx"}, &SSISParser{})
	_ = r.Register([]string{".cbl", ".cob"}, &COBOLParser{})
	_ = r.Register([]string{".jcl"}, &JCLParser{})
	_ = r.Register([]string{".json"}, &JSONConfigParser{})
	_ = r.Register([]string{".xlsx"}, &ExcelParser{})
	_ = r.Register([]string{".csv"}, &CSVLineageParser{})
	return r
}
