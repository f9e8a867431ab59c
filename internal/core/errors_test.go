package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIngestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"cast failure", castFailure("a", "b", "INTEGER", nil), ErrCastFailure, true},
		{"wrapped empty content", fmt.Errorf("outer: %w", emptyContent("", "no tables found in database file")), ErrEmptyContent, true},
		{"load is not cast", engineLoadError("CSV validation", errors.New("x")), ErrCastFailure, false},
		{"unrecognized", unrecognizedFormat("a.pdf", ""), ErrUnrecognizedFormat, true},
		{"plain error", errors.New("x"), ErrEngineLoad, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineLoadError(t *testing.T) {
	cause := errors.New("Invalid Input Error: bad file")
	err := engineLoadError("Parquet validation", cause)

	if got, want := err.Error(), "Parquet validation failed: Invalid Input Error: bad file"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if KindOf(err) != KindEngineLoad {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindEngineLoad)
	}
}

func TestUnrecognizedFormat_ListsSupportedFormats(t *testing.T) {
	msg := unrecognizedFormat("notes.pdf", "application/pdf").Error()

	for _, want := range []string{"notes.pdf", "application/pdf", "CSV", "Parquet", "JSON", "Excel"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not mention %q", msg, want)
		}
	}
}

func TestCastFailure_Message(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  string
		target string
		want   string
	}{
		{
			name:   "column and value located",
			column: "score",
			value:  "N/A",
			target: "DOUBLE",
			want:   `cast failed for column "score": value "N/A" cannot be converted to DOUBLE: Conversion Error: Could not convert string 'N/A' to DOUBLE`,
		},
		{
			name: "nothing located",
			want: "cast failed: Conversion Error: Could not convert string 'N/A' to DOUBLE",
		},
	}

	cause := errors.New("Conversion Error: Could not convert string 'N/A' to DOUBLE")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := castFailure(tt.column, tt.value, tt.target, cause)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestKindOf_NotIngestError(t *testing.T) {
	if got := KindOf(errors.New("x")); got != 0 {
		t.Errorf("KindOf() = %v, want 0", got)
	}
	if got := ErrorKind(0).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
