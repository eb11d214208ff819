package ir

import "time"

// DocumentKind is the closed set of source artifact formats TraceAI
// understands.
type DocumentKind string

const (
	KindSSIS       DocumentKind = "SSIS"
	KindCOBOL      DocumentKind = "COBOL"
	KindJCL        DocumentKind = "JCL"
	KindJSONConfig DocumentKind = "JSON_CONFIG"
	KindExcel      DocumentKind = "EXCEL"
	KindCSVLineage DocumentKind = "CSV_LINEAGE"
)

// DataSourceKind classifies the kind of endpoint a DataSource represents.
type DataSourceKind string

const (
	DataSourceDB      DataSourceKind = "db"
	DataSourceFile    DataSourceKind = "file"
	DataSourceDataset DataSourceKind = "dataset"
	DataSourceFTP     DataSourceKind = "ftp"
	DataSourceHTTP    DataSourceKind = "http"
	DataSourceUnknown DataSourceKind = "unknown"
)

// EntityType classifies the logical shape of a DataEntity.
type EntityType string

const (
	EntityTable   EntityType = "table"
	EntityRecord  EntityType = "record"
	EntitySheet   EntityType = "sheet"
	EntityRange   EntityType = "range"
	EntityDataset EntityType = "dataset"
)

// DependencyKind is the closed set of edge kinds in the graph.
type DependencyKind string

const (
	DepContains  DependencyKind = "CONTAINS"
	DepPrecedes  DependencyKind = "PRECEDES"
	DepReadsFrom DependencyKind = "READS_FROM"
	DepWritesTo  DependencyKind = "WRITES_TO"
	DepCalls     DependencyKind = "CALLS"
	DepUses      DependencyKind = "USES"
)

// Document represents one source artifact after parsing.
type Document struct {
	ID          string
	Name        string
	Kind        DocumentKind
	SourcePath  string
	ContentHash string
	ParsedAt    time.Time
	Custom      map[string]string
}

// Component is a unit of work inside a Document: an SSIS task, a COBOL
// paragraph, a JCL step, a JSON job, an Excel sheet.
type Component struct {
	ID             string
	DocumentID     string
	Name           string
	ComponentType  string
	Description    string
	SourceExcerpt  string
	ParsePartial   bool
}

// DataSource is a connection or endpoint: a DB connection string, a
// mainframe dataset DSN, a file path, an FTP endpoint.
type DataSource struct {
	ID         string
	Name       string
	Kind       DataSourceKind
	Locator    string
	Properties map[string]string
}

// DataEntity is a logical data container: table, COBOL 01-level record,
// Excel named range, dataset member.
type DataEntity struct {
	ID         string
	Name       string
	EntityType EntityType
	Columns    []string
	Properties map[string]string
}

// Parameter is a named variable: SSIS variable, JCL symbolic, JSON config
// value.
type Parameter struct {
	ID       string
	Name     string
	DataType string
	Value    string
}

// Dependency is an edge value between two node IDs.
type Dependency struct {
	FromID     string
	ToID       string
	Kind       DependencyKind
	Properties map[string]string
}

// ParsedDocument is the aggregate every per-format parser returns. It must
// be self-consistent: every Dependency FromID/ToID either refers to an ID
// defined within this aggregate, or to an intended-shared DataSource/
// DataEntity ID whose value is present in DataSources/DataEntities.
type ParsedDocument struct {
	Document     Document
	Components   []Component
	DataSources  []DataSource
	DataEntities []DataEntity
	Parameters   []Parameter
	Dependencies []Dependency
	Warnings     []string
}

// DeferredReference is an edge whose target is named but not yet present
// in the graph (e.g. CALL "X" before Document X has been ingested).
type DeferredReference struct {
	FromID   string
	ToName   string
	Kind     DependencyKind
	Origin   string // document ID that recorded the reference
	Resolved bool
}
