// Package ui centralizes terminal color usage so every subcommand
// applies the same convention: red for errors, yellow for warnings,
// green for success, cyan for informational headers, bold for section
// titles, dim for secondary detail. Respects NO_COLOR via fatih/color's
// global NoColor detection. Adapted from the teacher's internal/ui
// package.
package ui

import "github.com/fatih/color"

var (
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Success = color.New(color.FgGreen)
	Info    = color.New(color.FgCyan)
	Header  = color.New(color.Bold)
	Dim     = color.New(color.Faint)
)
