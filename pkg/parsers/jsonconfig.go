package parsers

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// JSONConfigParser is a schema-agnostic walker: it classifies objects by
// shape rather than expecting one fixed config schema, per spec §4.3.
type JSONConfigParser struct{}

func (p *JSONConfigParser) Validate(path string, data []byte) bool {
	return json.Valid(data)
}

func (p *JSONConfigParser) Parse(ctx context.Context, path string, data []byte) (*ir.ParsedDocument, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedInput, "invalid JSON", err)
	}

	hash := ir.ContentHash(data)
	docID := ir.DocumentID(path, hash)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	result := &ir.ParsedDocument{}
	custom := map[string]string{}

	componentByName := map[string]string{}
	var pendingDepends []struct{ from, toName string }

	walk := func(key string, v any) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		switch {
		case hasKeys(obj, "name", "depends_on"):
			compName, _ := obj["name"].(string)
			compID := ir.ComponentID(docID, compName)
			componentByName[compName] = compID
			result.Components = append(result.Components, ir.Component{
				ID:            compID,
				DocumentID:    docID,
				Name:          compName,
				ComponentType: "job",
			})
			result.Dependencies = append(result.Dependencies, ir.Dependency{
				FromID: docID, ToID: compID, Kind: ir.DepContains,
			})
			switch deps := obj["depends_on"].(type) {
			case []any:
				for _, d := range deps {
					if s, ok := d.(string); ok {
						pendingDepends = append(pendingDepends, struct{ from, toName string }{compID, s})
					}
				}
			case string:
				pendingDepends = append(pendingDepends, struct{ from, toName string }{compID, deps})
			}
		case hasKeys(obj, "source", "target"):
			src, _ := obj["source"].(string)
			dst, _ := obj["target"].(string)
			srcID := ir.DataEntityID("", src)
			dstID := ir.DataEntityID("", dst)
			result.DataEntities = append(result.DataEntities,
				ir.DataEntity{ID: srcID, Name: src, EntityType: ir.EntityTable},
				ir.DataEntity{ID: dstID, Name: dst, EntityType: ir.EntityTable},
			)
			linkID := docID
			if key != "" {
				linkID = ir.ComponentID(docID, key)
				result.Components = append(result.Components, ir.Component{
					ID:            linkID,
					DocumentID:    docID,
					Name:          key,
					ComponentType: "link",
				})
				result.Dependencies = append(result.Dependencies, ir.Dependency{
					FromID: docID, ToID: linkID, Kind: ir.DepContains,
				})
			}
			result.Dependencies = append(result.Dependencies,
				ir.Dependency{FromID: linkID, ToID: srcID, Kind: ir.DepReadsFrom},
				ir.Dependency{FromID: linkID, ToID: dstID, Kind: ir.DepWritesTo},
			)
		default:
			if key != "" {
				b, _ := json.Marshal(v)
				custom[key] = string(b)
			}
		}
	}

	for key, v := range root {
		switch key {
		case "parameters":
			if params, ok := v.(map[string]any); ok {
				for pname, pval := range params {
					result.Parameters = append(result.Parameters, ir.Parameter{
						ID:       ir.ParameterID(docID, pname),
						Name:     pname,
						DataType: fmt.Sprintf("%T", pval),
						Value:    fmt.Sprintf("%v", pval),
					})
				}
			}
		case "components", "jobs", "tasks":
			if arr, ok := v.([]any); ok {
				for _, item := range arr {
					walk("", item)
				}
			}
		default:
			walk(key, v)
		}
	}

	for _, d := range pendingDepends {
		if toID, ok := componentByName[d.toName]; ok {
			result.Dependencies = append(result.Dependencies, ir.Dependency{
				FromID: toID, ToID: d.from, Kind: ir.DepPrecedes,
			})
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("depends_on references unknown component %q", d.toName))
		}
	}

	result.Document = ir.Document{
		ID:          docID,
		Name:        name,
		Kind:        ir.KindJSONConfig,
		SourcePath:  path,
		ContentHash: hash,
		Custom:      custom,
	}
	return result, nil
}

func hasKeys(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}
