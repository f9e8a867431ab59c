package core

import "strings"

// LogicalFormat identifies a supported tabular file format.
type LogicalFormat int

const (
	FormatNone LogicalFormat = iota
	FormatCSV
	FormatParquet
	FormatJSON
	FormatExcel
	FormatEmbeddedDB
)

// String returns the identifier used in API responses.
func (f LogicalFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	case FormatJSON:
		return "json"
	case FormatExcel:
		return "excel"
	case FormatEmbeddedDB:
		return "duckdb"
	default:
		return "unknown"
	}
}

// Label returns a human-readable name for messages.
func (f LogicalFormat) Label() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatParquet:
		return "Parquet"
	case FormatJSON:
		return "JSON"
	case FormatExcel:
		return "Excel"
	case FormatEmbeddedDB:
		return "Database file"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the format as its identifier.
func (f LogicalFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFormat converts an identifier back to a LogicalFormat.
// Returns FormatNone for unknown identifiers.
func ParseFormat(s string) LogicalFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV
	case "parquet":
		return FormatParquet
	case "json":
		return FormatJSON
	case "excel":
		return FormatExcel
	case "duckdb":
		return FormatEmbeddedDB
	default:
		return FormatNone
	}
}

// ReaderKind names the engine strategy a format is loaded with.
type ReaderKind string

const (
	ReaderCSV     ReaderKind = "read_csv_auto"
	ReaderParquet ReaderKind = "read_parquet"
	ReaderJSON    ReaderKind = "read_json"
	ReaderExcel   ReaderKind = "spreadsheet_to_csv"
	ReaderAttach  ReaderKind = "attach"
)

// FormatDescriptor describes how a format is recognized and loaded.
type FormatDescriptor struct {
	Format     LogicalFormat `json:"format"`
	Extensions []string      `json:"extensions"` // lower-cased, leading dot
	MIMETypes  []string      `json:"mimeTypes"`
	Reader     ReaderKind    `json:"reader"`
	Extension  string        `json:"engineExtension,omitempty"` // engine extension loaded before reading
}

// ValidationResult is the outcome of a single validation call.
//
// When IsValid is false, ColumnNames and PreviewRows are empty and Error is set.
// When IsValid is true, Error may still carry a non-fatal advisory.
type ValidationResult struct {
	IsValid         bool          `json:"isValid"`
	Format          LogicalFormat `json:"format"`
	ColumnNames     []string      `json:"columnNames"`
	ColumnTypes     []string      `json:"columnTypes"`
	ColumnCount     int           `json:"columnCount"`
	PreviewRowCount int           `json:"previewRowCount"`
	PreviewRows     [][]any       `json:"previewRows"`
	Error           string        `json:"error,omitempty"`
	Code            string        `json:"code,omitempty"`   // user message code, see MapError
	Tables          []string      `json:"tables,omitempty"` // embedded database files only
}

// ValidateRequest is the input to Service.Validate.
type ValidateRequest struct {
	Data       []byte
	FileName   string
	MIMEType   string // optional
	ByteLength int64  // declared size; len(Data) when zero
}

// ColumnMapping maps original column names to the names chosen by the user.
type ColumnMapping map[string]string

// TypeMapping maps (renamed) column names to target engine type names.
type TypeMapping map[string]string

// ConvertRequest is the input to Service.Convert.
type ConvertRequest struct {
	Data          []byte
	FileName      string
	MIMEType      string
	ColumnMapping ColumnMapping
	TypeMapping   TypeMapping
}

// Relation is the name of a relation queryable through a session.
// Qualified holds the catalog-qualified name used for data access; Table is
// the bare name used for catalog metadata lookups.
type Relation struct {
	Catalog   string
	Schema    string
	Table     string
	Qualified string
}

// emptyResult builds an invalid result carrying only the format and error.
func emptyResult(format LogicalFormat) ValidationResult {
	return ValidationResult{
		Format:      format,
		ColumnNames: []string{},
		ColumnTypes: []string{},
		PreviewRows: [][]any{},
	}
}
