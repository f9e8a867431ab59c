package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Format Errors (FMT001-FMT099)
//
//	FMT001 - Unrecognized format: The file type is not supported
//	         Action: Upload a CSV, Parquet, JSON, Excel or DuckDB file
//	         Patterns: "unrecognized file format"
//
// # Load Errors (LOAD001-LOAD099)
//
// The embedded engine rejected the file as the detected format:
//
//	LOAD001 - CSV could not be read
//	          Patterns: "csv validation failed"
//	LOAD002 - Parquet could not be read
//	          Patterns: "parquet validation failed"
//	LOAD003 - JSON could not be read in any supported layout
//	          Patterns: "json validation failed"
//	LOAD004 - Workbook could not be read
//	          Patterns: "excel validation failed"
//	LOAD005 - Database file could not be opened
//	          Patterns: "database validation failed"
//	LOAD006 - Compressed file could not be unpacked
//	          Patterns: "decompression failed"
//
// # Content Errors (EMPTY001-EMPTY099)
//
//	EMPTY001 - The file has no sheets, rows or tables
//	           Patterns: "no tables found", "contains no sheets", "contains no data"
//
// # Conversion Errors (CAST001-CAST099)
//
//	CAST001 - A value could not be converted to the chosen type
//	          Patterns: "cast failed"
//	CAST002 - The chosen type name is not valid
//	          Patterns: "invalid target type"
//
// # Advisories (SIZE001)
//
//	SIZE001 - File too large for local validation; the server will validate it
//	          Patterns: "file too large for client-side validation"
//
// # Session Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many validations in progress
//	         Patterns: "too many concurrent sessions"
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Advisories (SIZE001)
	// Matched first: an advisory text may mention other keywords.
	// =========================================================================
	{
		pattern: "file too large for client-side validation",
		msg: UserMessage{
			Message: "File is too large to check before upload",
			Action:  "Continue the upload; the server will validate the file",
			Code:    "SIZE001",
		},
	},

	// =========================================================================
	// Format Errors (FMT001)
	// =========================================================================
	{
		pattern: "unrecognized file format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a CSV, Parquet, JSON, Excel or DuckDB file",
			Code:    "FMT001",
		},
	},

	// =========================================================================
	// Content Errors (EMPTY001)
	// Checked before load errors: empty workbooks carry the Excel prefix too.
	// =========================================================================
	{
		pattern: "no tables found",
		msg: UserMessage{
			Message: "The database file does not contain any tables",
			Action:  "Check that you exported the right database",
			Code:    "EMPTY001",
		},
	},
	{
		pattern: "contains no sheets",
		msg: UserMessage{
			Message: "The workbook does not contain any sheets",
			Action:  "Add a sheet with data and try again",
			Code:    "EMPTY001",
		},
	},
	{
		pattern: "first sheet contains no data",
		msg: UserMessage{
			Message: "The first sheet of the workbook is empty",
			Action:  "Move your data to the first sheet and try again",
			Code:    "EMPTY001",
		},
	},
	{
		pattern: "contains no data",
		msg: UserMessage{
			Message: "The file does not contain any data",
			Action:  "Check that you picked the right file",
			Code:    "EMPTY001",
		},
	},

	// =========================================================================
	// Load Errors (LOAD001-LOAD006)
	// =========================================================================
	{
		pattern: "csv validation failed",
		msg: UserMessage{
			Message: "The file could not be read as CSV",
			Action:  "Ensure the file is delimited text with a header row",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "parquet validation failed",
		msg: UserMessage{
			Message: "The file could not be read as Parquet",
			Action:  "The file may be truncated or corrupt; export it again",
			Code:    "LOAD002",
		},
	},
	{
		pattern: "json validation failed",
		msg: UserMessage{
			Message: "The file could not be read as JSON records",
			Action:  "Use a JSON array of objects or one JSON object per line",
			Code:    "LOAD003",
		},
	},
	{
		pattern: "excel validation failed",
		msg: UserMessage{
			Message: "The workbook could not be read",
			Action:  "Save the workbook as .xlsx and try again",
			Code:    "LOAD004",
		},
	},
	{
		pattern: "database validation failed",
		msg: UserMessage{
			Message: "The database file could not be opened",
			Action:  "Ensure the file is a DuckDB database",
			Code:    "LOAD005",
		},
	},
	{
		pattern: "decompression failed",
		msg: UserMessage{
			Message: "The compressed file could not be unpacked",
			Action:  "Upload the uncompressed file instead",
			Code:    "LOAD006",
		},
	},

	// =========================================================================
	// Conversion Errors (CAST001-CAST002)
	// =========================================================================
	{
		pattern: "invalid target type",
		msg: UserMessage{
			Message: "One of the chosen column types is not valid",
			Action:  "Pick a type from the list",
			Code:    "CAST002",
		},
	},
	{
		pattern: "cast failed",
		msg: UserMessage{
			Message: "A value could not be converted to the chosen type",
			Action:  "Change the column type or fix the value in your file",
			Code:    "CAST001",
		},
	},

	// =========================================================================
	// Session Errors (UPL002-UPL005)
	// =========================================================================
	{
		pattern: "too many concurrent sessions",
		msg: UserMessage{
			Message: "System is busy checking other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	return MapMessage(err.Error())
}

// MapMessage is MapError for an error that has already been rendered to text,
// such as ValidationResult.Error.
func MapMessage(s string) UserMessage {
	if s == "" {
		return UserMessage{}
	}

	errStr := strings.ToLower(s)

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
