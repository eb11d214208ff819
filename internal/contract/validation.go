// Package contract validates inputs at the system boundary — CLI flags
// and tool-surface arguments — before they reach pkg/query or
// pkg/ingestion, returning InvalidArgument with field-level detail per
// spec §7. Grounded on the teacher's validate-before-dispatch style in
// cmd/cie/query.go.
package contract

import (
	"fmt"

	apperrors "github.com/traceai/engine/internal/errors"
)

// Direction is the closed set of traversal directions accepted by
// trace_lineage / component_dependencies.
type Direction string

const (
	Upstream   Direction = "upstream"
	Downstream Direction = "downstream"
	Both       Direction = "both"
)

// ValidateDirection checks that a direction string is one of the three
// spec-defined values.
func ValidateDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Upstream, Downstream, Both:
		return Direction(s), nil
	default:
		return "", apperrors.New(apperrors.InvalidArgument, fmt.Sprintf("unknown direction %q", s)).
			WithField("direction", "must be one of: upstream, downstream, both").
			WithFix("use --direction=upstream|downstream|both")
	}
}

// ValidateMaxDepth checks that max_depth is non-negative, per the
// "max_depth = 0 returns only the starting node(s)" boundary behavior.
func ValidateMaxDepth(d int) error {
	if d < 0 {
		return apperrors.New(apperrors.InvalidArgument, "max_depth must be >= 0").
			WithField("max_depth", fmt.Sprintf("got %d", d))
	}
	return nil
}

// ValidateLimit checks that a result-count limit is non-negative.
func ValidateLimit(limit int) error {
	if limit < 0 {
		return apperrors.New(apperrors.InvalidArgument, "limit must be >= 0").
			WithField("limit", fmt.Sprintf("got %d", limit))
	}
	return nil
}

// ValidateNonEmpty checks that a required string argument was supplied.
func ValidateNonEmpty(field, value string) error {
	if value == "" {
		return apperrors.New(apperrors.InvalidArgument, fmt.Sprintf("%s is required", field)).
			WithField(field, "must not be empty")
	}
	return nil
}

// ValidateGlobs checks that every glob pattern compiles, using the same
// matcher pkg/ingestion uses for discovery so an invalid pattern is
// rejected up front rather than silently matching nothing.
func ValidateGlobs(patterns []string, compile func(string) error) error {
	for _, p := range patterns {
		if err := compile(p); err != nil {
			return apperrors.Wrap(apperrors.InvalidArgument, fmt.Sprintf("invalid glob pattern %q", p), err).
				WithField("pattern", p)
		}
	}
	return nil
}
