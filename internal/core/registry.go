package core

import (
	"mime"
	"strings"
)

// formatRegistry is the fixed, ordered table of supported formats.
// Order is priority: Detect returns the first descriptor that matches, so a
// MIME type shared by several formats (application/octet-stream) resolves to
// the earliest entry.
var formatRegistry = [...]FormatDescriptor{
	{
		Format:     FormatCSV,
		Extensions: []string{".csv", ".tsv", ".txt"},
		MIMETypes:  []string{"text/csv", "text/tab-separated-values", "text/plain"},
		Reader:     ReaderCSV,
	},
	{
		Format:     FormatParquet,
		Extensions: []string{".parquet", ".parq"},
		MIMETypes:  []string{"application/octet-stream"},
		Reader:     ReaderParquet,
		Extension:  "parquet",
	},
	{
		Format:     FormatJSON,
		Extensions: []string{".json", ".jsonl", ".ndjson"},
		MIMETypes:  []string{"application/json", "text/json"},
		Reader:     ReaderJSON,
		Extension:  "json",
	},
	{
		Format:     FormatExcel,
		Extensions: []string{".xlsx", ".xls"},
		MIMETypes: []string{
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel",
		},
		Reader: ReaderExcel,
	},
	{
		Format:     FormatEmbeddedDB,
		Extensions: []string{".duckdb", ".db", ".ddb"},
		MIMETypes:  []string{"application/octet-stream"},
		Reader:     ReaderAttach,
	},
}

// Formats returns a copy of the registry in priority order.
func Formats() []FormatDescriptor {
	out := make([]FormatDescriptor, len(formatRegistry))
	for i, d := range formatRegistry {
		d.Extensions = append([]string(nil), d.Extensions...)
		d.MIMETypes = append([]string(nil), d.MIMETypes...)
		out[i] = d
	}
	return out
}

// Descriptor returns the registry entry for a format.
func Descriptor(f LogicalFormat) (FormatDescriptor, bool) {
	for _, d := range formatRegistry {
		if d.Format == f {
			return d, true
		}
	}
	return FormatDescriptor{}, false
}

// SupportedFormats returns the labels of all formats, in registry order.
func SupportedFormats() []string {
	labels := make([]string, len(formatRegistry))
	for i, d := range formatRegistry {
		labels[i] = d.Format.Label()
	}
	return labels
}

// SupportedExtensions returns every registered extension, in registry order.
func SupportedExtensions() []string {
	var exts []string
	for _, d := range formatRegistry {
		exts = append(exts, d.Extensions...)
	}
	return exts
}

// Detect returns the logical format for a file name and optional MIME type.
//
// Extensions are checked first across the whole registry; the MIME type is
// only consulted when no extension matches. Returns false if neither matches.
func Detect(fileName, mimeType string) (LogicalFormat, bool) {
	lower := strings.ToLower(strings.TrimSpace(fileName))

	if lower != "" {
		for _, d := range formatRegistry {
			for _, ext := range d.Extensions {
				if strings.HasSuffix(lower, ext) {
					return d.Format, true
				}
			}
		}
	}

	mt := normalizeMIME(mimeType)
	if mt == "" {
		return FormatNone, false
	}

	for _, d := range formatRegistry {
		for _, m := range d.MIMETypes {
			if m == mt {
				return d.Format, true
			}
		}
	}

	return FormatNone, false
}

// normalizeMIME lower-cases a MIME type and strips parameters such as charset.
func normalizeMIME(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
