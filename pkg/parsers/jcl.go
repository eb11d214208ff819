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

// JCLParser tokenizes 80-column JCL (spec §6), grounded on the same
// manual line-scanning idiom as COBOLParser.
type JCLParser struct{}

var (
	jobCardPattern  = regexp.MustCompile(`^//(\S+)\s+JOB\b`)
	execPattern     = regexp.MustCompile(`^//(\S+)\s+EXEC\s+PGM=(\S+?)(?:,|\s|$)`)
	ddPattern       = regexp.MustCompile(`^//(\S+)\s+DD\s+(.*)$`)
	dsnPattern      = regexp.MustCompile(`DSN=([^,\s]+)`)
	dispPattern     = regexp.MustCompile(`DISP=\(?([A-Z]+)`)
)

func (p *JCLParser) Validate(path string, data []byte) bool {
	return bytes.Contains(data, []byte("//")) && bytes.Contains(bytes.ToUpper(data), []byte("JOB"))
}

func (p *JCLParser) Parse(ctx context.Context, path string, data []byte) (*ir.ParsedDocument, error) {
	hash := ir.ContentHash(data)
	docID := ir.DocumentID(path, hash)

	var jobName string
	result := &ir.ParsedDocument{}

	var prevStepID string
	var currentStepID string
	stepIDByProgram := map[string]string{} // program name -> component id, for EXEC PGM deferred resolution

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.Cancelled, "JCL parse cancelled", ctx.Err())
		default:
		}

		raw := scanner.Text()
		// 80-column significant; ignore anything beyond.
		if len(raw) > 80 {
			raw = raw[:80]
		}
		line := strings.TrimRight(raw, " \t")
		if line == "" {
			continue
		}

		if m := jobCardPattern.FindStringSubmatch(line); m != nil {
			jobName = m[1]
			continue
		}

		if m := execPattern.FindStringSubmatch(line); m != nil {
			stepName, program := m[1], strings.TrimSuffix(m[2], ".")
			currentStepID = ir.ComponentID(docID, stepName)
			result.Components = append(result.Components, ir.Component{
				ID:            currentStepID,
				DocumentID:    docID,
				Name:          stepName,
				ComponentType: "step",
				Description:   "PGM=" + program,
			})
			result.Dependencies = append(result.Dependencies, ir.Dependency{
				FromID: docID,
				ToID:   currentStepID,
				Kind:   ir.DepContains,
			})
			stepIDByProgram[strings.ToUpper(program)] = currentStepID
			if prevStepID != "" {
				result.Dependencies = append(result.Dependencies, ir.Dependency{
					FromID: prevStepID,
					ToID:   currentStepID,
					Kind:   ir.DepPrecedes,
				})
			}
			prevStepID = currentStepID

			// A deferred CALLS edge to the Document implementing this
			// program, resolved at builder commit if a Document with that
			// name exists (per-directory namespace recommended by
			// spec §9).
			result.Dependencies = append(result.Dependencies, ir.Dependency{
				FromID: currentStepID,
				ToID:   "deferred:program:" + strings.ToUpper(program),
				Kind:   ir.DepCalls,
				Properties: map[string]string{"deferred": "true"},
			})
			continue
		}

		if m := ddPattern.FindStringSubmatch(line); m != nil {
			if currentStepID == "" {
				continue
			}
			ddName := m[1]
			rest := m[2]
			dsnM := dsnPattern.FindStringSubmatch(rest)
			if dsnM == nil {
				continue
			}
			dsn := dsnM[1]
			// The DD name is the physical file handle a COBOL program's
			// SELECT...ASSIGN TO clause names, so the DataSource interns
			// on it rather than on the DSN: this is what lets a COBOL
			// program's file I/O and the JCL step that runs it share one
			// graph node for the same dataset.
			dsID := ir.DataSourceID(ir.DataSourceFile, ddName)
			result.DataSources = append(result.DataSources, ir.DataSource{
				ID:         dsID,
				Name:       ddName,
				Kind:       ir.DataSourceFile,
				Locator:    dsn,
				Properties: map[string]string{"dsn": dsn},
			})

			dispM := dispPattern.FindStringSubmatch(rest)
			disp := ""
			if dispM != nil {
				disp = strings.ToUpper(dispM[1])
			}
			kind := ir.DepReadsFrom
			switch disp {
			case "SHR", "OLD":
				kind = ir.DepReadsFrom
			case "NEW", "MOD":
				kind = ir.DepWritesTo
			}
			result.Dependencies = append(result.Dependencies, ir.Dependency{
				FromID: currentStepID,
				ToID:   dsID,
				Kind:   kind,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedInput, "error scanning JCL source", err)
	}
	if jobName == "" {
		return nil, apperrors.New(apperrors.MalformedInput, "no JOB card found")
	}

	result.Document = ir.Document{
		ID:          docID,
		Name:        jobName,
		Kind:        ir.KindJCL,
		SourcePath:  path,
		ContentHash: hash,
		Custom:      map[string]string{},
	}
	return result, nil
}
