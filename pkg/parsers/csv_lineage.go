package parsers

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// CSVLineageParser reads RFC 4180 CSV with an auto-detected delimiter
// among comma/semicolon/tab, and an auto-detected header shape among
// (source,target), (source_field,target_field), or
// (source_table,target_table,transformation_logic), per spec §4.3.
type CSVLineageParser struct{}

func (p *CSVLineageParser) Validate(path string, data []byte) bool {
	return bytes.Contains(bytes.ToLower(data), []byte("source"))
}

func sniffDelimiter(firstLine string) rune {
	counts := map[rune]int{',': strings.Count(firstLine, ","), ';': strings.Count(firstLine, ";"), '\t': strings.Count(firstLine, "\t")}
	best, bestCount := ',', -1
	for d, c := range counts {
		if c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func (p *CSVLineageParser) Parse(ctx context.Context, path string, data []byte) (*ir.ParsedDocument, error) {
	firstLineEnd := bytes.IndexByte(data, '\n')
	firstLine := string(data)
	if firstLineEnd >= 0 {
		firstLine = string(data[:firstLineEnd])
	}
	delim := sniffDelimiter(firstLine)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedInput, "failed to parse CSV", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.New(apperrors.MalformedInput, "empty CSV file")
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var srcCol, dstCol, transformCol int = -1, -1, -1
	switch {
	case has(colIdx, "source_table") && has(colIdx, "target_table"):
		srcCol, dstCol = colIdx["source_table"], colIdx["target_table"]
		if i, ok := colIdx["transformation_logic"]; ok {
			transformCol = i
		}
	case has(colIdx, "source_field") && has(colIdx, "target_field"):
		srcCol, dstCol = colIdx["source_field"], colIdx["target_field"]
	case has(colIdx, "source") && has(colIdx, "target"):
		srcCol, dstCol = colIdx["source"], colIdx["target"]
	default:
		return nil, apperrors.New(apperrors.MalformedInput, "CSV header does not match any recognized lineage shape")
	}

	hash := ir.ContentHash(data)
	docID := ir.DocumentID(path, hash)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	result := &ir.ParsedDocument{}
	seen := map[string]bool{}

	for i, row := range rows[1:] {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.Cancelled, "CSV parse cancelled", ctx.Err())
		default:
		}
		if srcCol >= len(row) || dstCol >= len(row) {
			result.Warnings = append(result.Warnings, rowWarning(i+2))
			continue
		}
		src := strings.TrimSpace(row[srcCol])
		dst := strings.TrimSpace(row[dstCol])
		if src == "" || dst == "" {
			continue
		}
		srcID := ir.DataEntityID("", src)
		dstID := ir.DataEntityID("", dst)
		if !seen[srcID] {
			seen[srcID] = true
			result.DataEntities = append(result.DataEntities, ir.DataEntity{ID: srcID, Name: src, EntityType: ir.EntityTable})
		}
		if !seen[dstID] {
			seen[dstID] = true
			result.DataEntities = append(result.DataEntities, ir.DataEntity{ID: dstID, Name: dst, EntityType: ir.EntityTable})
		}
		props := map[string]string{}
		if transformCol >= 0 && transformCol < len(row) {
			props["transformation_logic"] = row[transformCol]
		}
		result.Dependencies = append(result.Dependencies,
			ir.Dependency{FromID: srcID, ToID: dstID, Kind: ir.DepWritesTo, Properties: props},
		)
	}

	result.Document = ir.Document{
		ID:          docID,
		Name:        name,
		Kind:        ir.KindCSVLineage,
		SourcePath:  path,
		ContentHash: hash,
		Custom:      map[string]string{},
	}
	return result, nil
}

func has(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}

func rowWarning(line int) string {
	return "row " + strconv.Itoa(line) + ": fewer columns than header, skipped"
}
