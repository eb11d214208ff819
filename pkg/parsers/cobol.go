package parsers

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strings"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// COBOLParser tokenizes fixed-form COBOL (columns 7-72 significant,
// per spec §6) by division, grounded on the teacher's manual
// character-scanning fallback in pkg/ingestion/parser_go.go rather than
// any grammar-based parser (none exists for COBOL in this toolchain).
type COBOLParser struct {
	// FreeForm accepts source without the fixed 7-72 column convention
	// when set, per the "free-form accepted behind a flag" clause of
	// spec §6. Defaults to false (fixed-form).
	FreeForm bool
}

var (
	selectPattern    = regexp.MustCompile(`(?i)^\s*SELECT\s+(\S+)\s+ASSIGN\s+TO\s+(\S+)`)
	level01Pattern   = regexp.MustCompile(`(?i)^\s*01\s+(\S+)`)
	paragraphPattern = regexp.MustCompile(`(?i)^([A-Z0-9][A-Z0-9-]*)\.\s*$`)
	performPattern   = regexp.MustCompile(`(?i)\bPERFORM\s+([A-Z0-9][A-Z0-9-]*)`)
	callPattern      = regexp.MustCompile(`(?i)\bCALL\s+['"]([^'"]+)['"]`)
	readPattern      = regexp.MustCompile(`(?i)\b(READ)\s+(\S+)`)
	writePattern     = regexp.MustCompile(`(?i)\b(WRITE|REWRITE|DELETE)\s+(\S+)`)
	execSQLPattern   = regexp.MustCompile(`(?is)EXEC\s+SQL(.*?)END-EXEC`)
	programIDPattern = regexp.MustCompile(`(?i)PROGRAM-ID\.\s+(\S+)`)
)

func (p *COBOLParser) Validate(path string, data []byte) bool {
	upper := strings.ToUpper(string(data))
	return strings.Contains(upper, "IDENTIFICATION DIVISION") || strings.Contains(upper, "PROGRAM-ID")
}

// significantText returns the columns that matter for a physical line:
// 7-72 (1-indexed) when fixed-form, the whole line when free-form.
func (p *COBOLParser) significantText(line string) string {
	if p.FreeForm {
		return line
	}
	runes := []rune(line)
	if len(runes) < 7 {
		return ""
	}
	end := len(runes)
	if end > 72 {
		end = 72
	}
	return string(runes[6:end])
}

func (p *COBOLParser) Parse(ctx context.Context, path string, data []byte) (*ir.ParsedDocument, error) {
	if !p.Validate(path, data) {
		return nil, apperrors.New(apperrors.MalformedInput, "no IDENTIFICATION DIVISION / PROGRAM-ID found")
	}

	hash := ir.ContentHash(data)
	docID := ir.DocumentID(path, hash)
	programName := ""

	result := &ir.ParsedDocument{}
	dsIDByFileName := map[string]string{}   // SELECT alias -> DataSource id
	entityByFileTag := map[string]string{}
	var currentParagraph string
	currentDivision := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.Cancelled, "COBOL parse cancelled", ctx.Err())
		default:
		}

		raw := scanner.Text()
		line := p.significantText(raw)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.Contains(upper, "IDENTIFICATION DIVISION"):
			currentDivision = "IDENTIFICATION"
		case strings.Contains(upper, "ENVIRONMENT DIVISION"):
			currentDivision = "ENVIRONMENT"
		case strings.Contains(upper, "DATA DIVISION"):
			currentDivision = "DATA"
		case strings.Contains(upper, "PROCEDURE DIVISION"):
			currentDivision = "PROCEDURE"
		}

		if m := programIDPattern.FindStringSubmatch(trimmed); m != nil {
			programName = strings.TrimSuffix(m[1], ".")
		}

		if currentDivision == "ENVIRONMENT" {
			if m := selectPattern.FindStringSubmatch(trimmed); m != nil {
				alias, device := m[1], strings.Trim(m[2], ".")
				// The DataSource interns on the ASSIGN-TO device, the same
				// name a JCL DD statement for this file uses, so a COBOL
				// program and the job step that runs it resolve to one
				// node. Name is the SELECT alias, since that is what
				// READ/WRITE statements and a caller's entity_name actually
				// use; the alias is also kept as an attribute so the node
				// still resolves by alias even when a JCL document names
				// the shared node first.
				dsID := ir.DataSourceID(ir.DataSourceFile, device)
				dsIDByFileName[alias] = dsID
				result.DataSources = append(result.DataSources, ir.DataSource{
					ID:         dsID,
					Name:       alias,
					Kind:       ir.DataSourceFile,
					Locator:    device,
					Properties: map[string]string{"alias": alias, "device": device},
				})
			}
		}

		if currentDivision == "DATA" {
			if m := level01Pattern.FindStringSubmatch(trimmed); m != nil {
				name := strings.TrimSuffix(m[1], ".")
				entID := ir.DataEntityID("", name)
				entityByFileTag[strings.ToUpper(name)] = entID
				result.DataEntities = append(result.DataEntities, ir.DataEntity{
					ID:         entID,
					Name:       name,
					EntityType: ir.EntityRecord,
				})
			}
		}

		if currentDivision == "PROCEDURE" {
			if m := paragraphPattern.FindStringSubmatch(trimmed); m != nil && !strings.Contains(upper, "PROCEDURE DIVISION") {
				name := m[1]
				currentParagraph = name
				result.Components = append(result.Components, ir.Component{
					ID:            ir.ComponentID(docID, name),
					DocumentID:    docID,
					Name:          name,
					ComponentType: "paragraph",
				})
				result.Dependencies = append(result.Dependencies, ir.Dependency{
					FromID: docID,
					ToID:   ir.ComponentID(docID, name),
					Kind:   ir.DepContains,
				})
			}

			if currentParagraph != "" {
				callerID := ir.ComponentID(docID, currentParagraph)

				for _, m := range performPattern.FindAllStringSubmatch(trimmed, -1) {
					result.Dependencies = append(result.Dependencies, ir.Dependency{
						FromID: callerID,
						ToID:   ir.ComponentID(docID, m[1]),
						Kind:   ir.DepCalls,
					})
				}

				for _, m := range callPattern.FindAllStringSubmatch(trimmed, -1) {
					// Cross-document call: target program is a deferred
					// reference resolved by the graph builder at commit.
					result.Dependencies = append(result.Dependencies, ir.Dependency{
						FromID: callerID,
						ToID:   "deferred:program:" + strings.ToUpper(m[1]),
						Kind:   ir.DepCalls,
						Properties: map[string]string{"deferred": "true"},
					})
				}

				for _, m := range readPattern.FindAllStringSubmatch(trimmed, -1) {
					if dsID, ok := dsIDByFileName[strings.TrimSuffix(m[2], ".")]; ok {
						result.Dependencies = append(result.Dependencies, ir.Dependency{
							FromID: callerID,
							ToID:   dsID,
							Kind:   ir.DepReadsFrom,
						})
					}
				}
				for _, m := range writePattern.FindAllStringSubmatch(trimmed, -1) {
					target := strings.TrimSuffix(m[2], ".")
					if dsID, ok := dsIDByFileName[target]; ok {
						result.Dependencies = append(result.Dependencies, ir.Dependency{
							FromID: callerID,
							ToID:   dsID,
							Kind:   ir.DepWritesTo,
						})
					} else if entID, ok := entityByFileTag[strings.ToUpper(target)]; ok {
						result.Dependencies = append(result.Dependencies, ir.Dependency{
							FromID: callerID,
							ToID:   entID,
							Kind:   ir.DepWritesTo,
						})
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedInput, "error scanning COBOL source", err)
	}

	if programName == "" {
		return nil, apperrors.New(apperrors.MalformedInput, "no PROGRAM-ID found")
	}

	// Embedded EXEC SQL blocks are scanned like SSIS SQL, best effort.
	for _, m := range execSQLPattern.FindAllStringSubmatch(string(data), -1) {
		sql := m[1]
		for _, sm := range sqlEntityPattern.FindAllStringSubmatch(sql, -1) {
			name := strings.Trim(firstNonEmpty(sm[1], sm[2], sm[3], sm[4]), "[]")
			if name == "" {
				continue
			}
			entID := ir.DataEntityID("", name)
			result.DataEntities = append(result.DataEntities, ir.DataEntity{
				ID:         entID,
				Name:       name,
				EntityType: ir.EntityTable,
				Properties: map[string]string{"confidence": "heuristic"},
			})
		}
	}

	result.Document = ir.Document{
		ID:          docID,
		Name:        programName,
		Kind:        ir.KindCOBOL,
		SourcePath:  path,
		ContentHash: hash,
		Custom:      map[string]string{},
	}
	return result, nil
}
