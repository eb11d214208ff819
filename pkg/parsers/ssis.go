package parsers

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/ir"
)

// SSISParser extracts a Document, Components, DataSources, Parameters
// and Dependencies from an SSIS .dtsx package (Office/Microsoft XML,
// tolerant of SSIS 2012/2016/2019 dialects — unknown elements are simply
// not decoded, which is the forward-compatible behavior spec §6 asks
// for).
type SSISParser struct{}

// dtsxPackage is a deliberately loose decode target: only the elements
// this engine understands are named; everything else XML decodes into
// is dropped, which is exactly the "unknown elements ignored" tolerance
// spec §6 requires.
type dtsxPackage struct {
	XMLName          xml.Name          `xml:"Executable"`
	ObjectName       string            `xml:"ObjectName,attr"`
	DTSID            string            `xml:"DTSID,attr"`
	Executables      []dtsxExecutable  `xml:"Executables>Executable"`
	ConnectionMgrs   []dtsxConnMgr     `xml:"ConnectionManagers>ConnectionManager"`
	Variables        []dtsxVariable    `xml:"Variables>Variable"`
	PrecedenceConstr []dtsxPrecedence  `xml:"PrecedenceConstraints>PrecedenceConstraint"`
}

type dtsxExecutable struct {
	ObjectName string `xml:"ObjectName,attr"`
	DTSID      string `xml:"DTSID,attr"`
	ExecType   string `xml:"ExecutableType,attr"`
	SQLTask    struct {
		TaskData struct {
			SQLStatementSource string `xml:"SqlStatementSource,attr"`
		} `xml:"SqlTaskData"`
	} `xml:"ObjectData"`
	InnerXML string `xml:",innerxml"`
}

type dtsxConnMgr struct {
	ObjectName     string `xml:"ObjectName,attr"`
	DTSID          string `xml:"DTSID,attr"`
	ConnectionStr  string `xml:"ObjectData>ConnectionManager>ConnectionString"`
	CreationName   string `xml:"CreationName,attr"`
}

type dtsxVariable struct {
	ObjectName string `xml:"ObjectName,attr"`
	DataType   string `xml:"DataType,attr"`
	Value      string `xml:"VariableValue"`
}

type dtsxPrecedence struct {
	From string `xml:"From,attr"`
	To   string `xml:"To,attr"`
}

var sqlEntityPattern = regexp.MustCompile(`(?i)\b(?:FROM|JOIN|INTO)\s+\[?([A-Za-z0-9_.\[\]]+)\]?|\bUPDATE\s+\[?([A-Za-z0-9_.\[\]]+)\]?|\bINSERT\s+INTO\s+\[?([A-Za-z0-9_.\[\]]+)\]?|\bDELETE\s+FROM\s+\[?([A-Za-z0-9_.\[\]]+)\]?`)

func (p *SSISParser) Validate(path string, data []byte) bool {
	return bytes.Contains(data, []byte("<Executable")) || bytes.Contains(data, []byte("DTS:Executable"))
}

func (p *SSISParser) Parse(ctx context.Context, path string, data []byte) (*ir.ParsedDocument, error) {
	var pkg dtsxPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedInput, "failed to parse SSIS package XML", err)
	}
	if pkg.ObjectName == "" {
		return nil, apperrors.New(apperrors.MalformedInput, "SSIS package has no ObjectName")
	}

	hash := ir.ContentHash(data)
	docID := ir.DocumentID(path, hash)

	doc := ir.Document{
		ID:          docID,
		Name:        pkg.ObjectName,
		Kind:        ir.KindSSIS,
		SourcePath:  path,
		ContentHash: hash,
		Custom:      map[string]string{},
	}

	result := &ir.ParsedDocument{Document: doc}

	// Connection managers -> DataSources.
	dsByLocalID := map[string]string{} // DTSID -> data source id
	for _, cm := range pkg.ConnectionMgrs {
		locator := cm.ConnectionStr
		if locator == "" {
			locator = cm.ObjectName
		}
		kind := ir.DataSourceDB
		if strings.Contains(strings.ToLower(cm.CreationName), "file") {
			kind = ir.DataSourceFile
		}
		ds := ir.DataSource{
			ID:      ir.DataSourceID(kind, locator),
			Name:    cm.ObjectName,
			Kind:    kind,
			Locator: locator,
			Properties: map[string]string{
				"creation_name": cm.CreationName,
			},
		}
		result.DataSources = append(result.DataSources, ds)
		dsByLocalID[cm.DTSID] = ds.ID
	}

	// Variables -> Parameters.
	for _, v := range pkg.Variables {
		result.Parameters = append(result.Parameters, ir.Parameter{
			ID:       ir.ParameterID(docID, v.ObjectName),
			Name:     v.ObjectName,
			DataType: v.DataType,
			Value:    v.Value,
		})
	}

	// Executables -> Components, with best-effort SQL lineage scan.
	execByLocalID := map[string]string{}
	entitySeen := map[string]bool{}
	for _, ex := range pkg.Executables {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.Cancelled, "SSIS parse cancelled", ctx.Err())
		default:
		}

		compID := ir.ComponentID(docID, ex.ObjectName)
		comp := ir.Component{
			ID:            compID,
			DocumentID:    docID,
			Name:          ex.ObjectName,
			ComponentType: fmt.Sprintf("DtsExecutable:%s", ex.ExecType),
		}
		execByLocalID[ex.DTSID] = compID

		sql := ex.SQLTask.TaskData.SQLStatementSource
		if sql == "" {
			sql = extractInlineSQL(ex.InnerXML)
		}
		if sql != "" {
			comp.SourceExcerpt = truncate(sql, 500)
			matches := sqlEntityPattern.FindAllStringSubmatch(sql, -1)
			if len(matches) == 0 && strings.Contains(strings.ToUpper(sql), "WITH ") {
				// CTE/dynamic SQL: recorded but not parsed, per spec §9 open
				// question. Flag as a partial parse rather than asserting
				// completeness.
				comp.ParsePartial = true
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("task %q: best-effort lineage only (CTE or dynamic SQL not parsed)", ex.ObjectName))
			}
			for _, m := range matches {
				name := firstNonEmpty(m[1], m[2], m[3], m[4])
				if name == "" {
					continue
				}
				name = strings.Trim(name, "[]")
				entID := ir.DataEntityID("", name)
				if !entitySeen[entID] {
					entitySeen[entID] = true
					result.DataEntities = append(result.DataEntities, ir.DataEntity{
						ID:         entID,
						Name:       name,
						EntityType: ir.EntityTable,
						Properties: map[string]string{"confidence": "heuristic"},
					})
				}
				kind := ir.DepReadsFrom
				upper := strings.ToUpper(m[0])
				if strings.HasPrefix(upper, "UPDATE") || strings.HasPrefix(upper, "INSERT") || strings.HasPrefix(upper, "DELETE") {
					kind = ir.DepWritesTo
				}
				result.Dependencies = append(result.Dependencies, ir.Dependency{
					FromID: compID,
					ToID:   entID,
					Kind:   kind,
				})
			}
		}

		result.Components = append(result.Components, comp)
		result.Dependencies = append(result.Dependencies, ir.Dependency{
			FromID: docID,
			ToID:   compID,
			Kind:   ir.DepContains,
		})
	}

	// Precedence constraints -> PRECEDES edges between executables.
	for _, pc := range pkg.PrecedenceConstr {
		fromID, fromOK := execByLocalID[pc.From]
		toID, toOK := execByLocalID[pc.To]
		if fromOK && toOK {
			result.Dependencies = append(result.Dependencies, ir.Dependency{
				FromID: fromID,
				ToID:   toID,
				Kind:   ir.DepPrecedes,
			})
		}
	}

	return result, nil
}

func extractInlineSQL(innerXML string) string {
	// Fallback scan for a SqlStatementSource attribute embedded deeper in
	// ObjectData than the typed struct above reaches (SSIS task XML
	// shapes vary by task type).
	idx := strings.Index(innerXML, "SqlStatementSource=\"")
	if idx < 0 {
		return ""
	}
	rest := innerXML[idx+len("SqlStatementSource=\""):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return xmlUnescape(rest[:end])
}

func xmlUnescape(s string) string {
	replacer := strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
	return replacer.Replace(s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
