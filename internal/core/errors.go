package core

// errors.go defines the ingestion error taxonomy.
//
// Every failure produced by validation or conversion is an *IngestError with
// a Kind. Validate turns these into ValidationResult data; Convert returns
// them as Go errors. Callers can test the kind with errors.Is against the
// sentinel values below.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an ingestion failure.
type ErrorKind int

const (
	// KindUnrecognizedFormat means neither extension nor MIME type matched.
	KindUnrecognizedFormat ErrorKind = iota + 1
	// KindEngineLoad means the engine rejected the buffer as the assumed format.
	KindEngineLoad
	// KindEmptyContent means the file parsed but held no rows, sheets or tables.
	KindEmptyContent
	// KindCastFailure means a value could not be converted to its target type.
	KindCastFailure
	// KindSizeBypass is advisory: validation was skipped for a large file.
	KindSizeBypass
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindUnrecognizedFormat:
		return "unrecognized_format"
	case KindEngineLoad:
		return "engine_load"
	case KindEmptyContent:
		return "empty_content"
	case KindCastFailure:
		return "cast_failure"
	case KindSizeBypass:
		return "size_bypass"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching.
var (
	ErrUnrecognizedFormat = &IngestError{Kind: KindUnrecognizedFormat}
	ErrEngineLoad         = &IngestError{Kind: KindEngineLoad}
	ErrEmptyContent       = &IngestError{Kind: KindEmptyContent}
	ErrCastFailure        = &IngestError{Kind: KindCastFailure}
)

// IngestError is a classified validation or conversion failure.
type IngestError struct {
	Kind    ErrorKind
	Op      string // operation prefix, e.g. "CSV validation"
	Message string // message shown to users
	Column  string // cast failures: offending column
	Value   string // cast failures: offending value
	Err     error  // underlying engine or library error
}

func (e *IngestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
		}
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an IngestError of the same kind.
// This lets callers match with errors.Is(err, ErrCastFailure).
func (e *IngestError) Is(target error) bool {
	t, ok := target.(*IngestError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// unrecognizedFormat builds the error for a file no descriptor matches.
func unrecognizedFormat(fileName, mimeType string) *IngestError {
	msg := fmt.Sprintf("Unrecognized file format for %q", fileName)
	if mimeType != "" {
		msg += fmt.Sprintf(" (type %s)", mimeType)
	}
	msg += ". Supported formats: " + strings.Join(SupportedFormats(), ", ")
	return &IngestError{Kind: KindUnrecognizedFormat, Op: "format detection", Message: msg}
}

// engineLoadError wraps an engine failure verbatim behind the operation name.
func engineLoadError(op string, err error) *IngestError {
	return &IngestError{
		Kind:    KindEngineLoad,
		Op:      op,
		Message: fmt.Sprintf("%s failed: %s", op, engineMessage(err)),
		Err:     err,
	}
}

// emptyContent builds an EmptyContent error with a descriptive message.
func emptyContent(op, detail string) *IngestError {
	msg := detail
	if op != "" {
		msg = fmt.Sprintf("%s failed: %s", op, detail)
	}
	return &IngestError{Kind: KindEmptyContent, Op: op, Message: msg}
}

// castFailure builds a CastFailure. column and value may be empty when the
// offending cell could not be located.
func castFailure(column, value, targetType string, err error) *IngestError {
	var b strings.Builder
	b.WriteString("cast failed")
	if column != "" {
		fmt.Fprintf(&b, " for column %q", column)
	}
	if value != "" {
		fmt.Fprintf(&b, ": value %q cannot be converted to %s", value, targetType)
	} else if targetType != "" {
		fmt.Fprintf(&b, ": cannot convert to %s", targetType)
	}
	if err != nil {
		fmt.Fprintf(&b, ": %s", engineMessage(err))
	}
	return &IngestError{
		Kind:    KindCastFailure,
		Op:      "conversion",
		Message: b.String(),
		Column:  column,
		Value:   value,
		Err:     err,
	}
}

// engineMessage extracts a readable message from an engine error.
func engineMessage(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}

// KindOf returns the kind of an error, or 0 if it is not an IngestError.
func KindOf(err error) ErrorKind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}
