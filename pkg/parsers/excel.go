package parsers

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// ExcelParser reads formulas only (no cell-value rendering), per spec §6,
// using github.com/xuri/excelize/v2 (grounded via pack manifests, see
// DESIGN.md — no teacher repo imports an Excel library directly).
type ExcelParser struct{}

var sheetRefPattern = regexp.MustCompile(`(?i)'?([A-Za-z0-9_ ]+)'?!\$?[A-Z]+\$?\d+`)
var lookupTablePattern = regexp.MustCompile(`(?i)(?:VLOOKUP|INDEX)\s*\(\s*[^,]+,\s*([A-Za-z_][A-Za-z0-9_.]*)`)

func (p *ExcelParser) Validate(path string, data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK"))
}

func (p *ExcelParser) Parse(ctx context.Context, path string, data []byte) (*ir.ParsedDocument, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedInput, "failed to open xlsx", err)
	}
	defer f.Close()

	hash := ir.ContentHash(data)
	docID := ir.DocumentID(path, hash)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	result := &ir.ParsedDocument{}
	sheetCompID := map[string]string{}

	for _, sheetName := range f.GetSheetList() {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.Cancelled, "Excel parse cancelled", ctx.Err())
		default:
		}
		compID := ir.ComponentID(docID, sheetName)
		sheetCompID[sheetName] = compID
		result.Components = append(result.Components, ir.Component{
			ID:            compID,
			DocumentID:    docID,
			Name:          sheetName,
			ComponentType: "sheet",
		})
		result.Dependencies = append(result.Dependencies, ir.Dependency{
			FromID: docID, ToID: compID, Kind: ir.DepContains,
		})
	}

	// Named ranges -> Parameters; tables -> DataEntities.
	for _, dn := range f.GetDefinedName() {
		result.Parameters = append(result.Parameters, ir.Parameter{
			ID:       ir.ParameterID(docID, dn.Name),
			Name:     dn.Name,
			DataType: "named_range",
			Value:    dn.RefersTo,
		})
	}

	entityByName := map[string]string{}
	for _, sheetName := range f.GetSheetList() {
		tables, err := f.GetTables(sheetName)
		if err != nil {
			continue
		}
		for _, tbl := range tables {
			entID := ir.DataEntityID("", tbl.Name)
			entityByName[strings.ToLower(tbl.Name)] = entID
			result.DataEntities = append(result.DataEntities, ir.DataEntity{
				ID:         entID,
				Name:       tbl.Name,
				EntityType: ir.EntityRange,
			})
		}

		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		compID := sheetCompID[sheetName]
		for r := range rows {
			for c := range rows[r] {
				cellRef, _ := excelize.CoordinatesToCellName(c+1, r+1)
				formula, err := f.GetCellFormula(sheetName, cellRef)
				if err != nil || formula == "" {
					continue
				}
				for _, m := range sheetRefPattern.FindAllStringSubmatch(formula, -1) {
					other := strings.TrimSpace(m[1])
					if other == sheetName {
						continue
					}
					if otherID, ok := sheetCompID[other]; ok {
						result.Dependencies = append(result.Dependencies, ir.Dependency{
							FromID: compID, ToID: otherID, Kind: ir.DepCalls,
						})
					}
				}
				if m := lookupTablePattern.FindStringSubmatch(formula); m != nil {
					tblName := strings.ToLower(m[1])
					if entID, ok := entityByName[tblName]; ok {
						result.Dependencies = append(result.Dependencies, ir.Dependency{
							FromID: compID, ToID: entID, Kind: ir.DepReadsFrom,
						})
					}
				}
			}
		}
	}

	if len(result.Components) == 0 {
		return nil, apperrors.New(apperrors.MalformedInput, fmt.Sprintf("workbook %s has no sheets", name))
	}

	result.Document = ir.Document{
		ID:          docID,
		Name:        name,
		Kind:        ir.KindExcel,
		SourcePath:  path,
		ContentHash: hash,
		Custom:      map[string]string{},
	}
	return result, nil
}
