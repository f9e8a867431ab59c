package core

import "testing"

func TestDetect_Extensions(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		want     LogicalFormat
	}{
		{"csv", "data.csv", "", FormatCSV},
		{"tsv", "data.tsv", "", FormatCSV},
		{"txt", "notes.TXT", "", FormatCSV},
		{"parquet", "events.parquet", "", FormatParquet},
		{"parq", "events.parq", "", FormatParquet},
		{"json", "rows.json", "", FormatJSON},
		{"jsonl", "rows.jsonl", "", FormatJSON},
		{"ndjson", "rows.ndjson", "", FormatJSON},
		{"xlsx", "Budget.XLSX", "", FormatExcel},
		{"xls", "legacy.xls", "", FormatExcel},
		{"duckdb", "warehouse.duckdb", "", FormatEmbeddedDB},
		{"db", "app.db", "", FormatEmbeddedDB},
		{"ddb", "app.ddb", "", FormatEmbeddedDB},
		{"extension wins over wrong mime", "data.csv", "application/json", FormatCSV},
		{"extension wins over octet-stream", "app.duckdb", "application/octet-stream", FormatEmbeddedDB},
		{"path with dots", "exports/2024.01.report.parquet", "", FormatParquet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.fileName, tt.mimeType)
			if !ok {
				t.Fatalf("Detect(%q, %q) returned no format", tt.fileName, tt.mimeType)
			}
			if got != tt.want {
				t.Errorf("Detect(%q, %q) = %v, want %v", tt.fileName, tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetect_MIMEFallback(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     LogicalFormat
	}{
		{"text/csv", "text/csv", FormatCSV},
		{"csv with charset", "text/csv; charset=utf-8", FormatCSV},
		{"upper case", "APPLICATION/JSON", FormatJSON},
		{"text/json", "text/json", FormatJSON},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatExcel},
		{"xls", "application/vnd.ms-excel", FormatExcel},
		{"octet-stream resolves to first registered", "application/octet-stream", FormatParquet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect("upload", tt.mimeType)
			if !ok {
				t.Fatalf("Detect(upload, %q) returned no format", tt.mimeType)
			}
			if got != tt.want {
				t.Errorf("Detect(upload, %q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetect_Unrecognized(t *testing.T) {
	tests := []struct {
		fileName string
		mimeType string
	}{
		{"image.png", ""},
		{"image.png", "image/png"},
		{"archive.zip", "application/zip"},
		{"", ""},
		{"noextension", ""},
		{"report.pdf", "application/pdf"},
		{"csv", ""}, // bare word, no dot
	}

	for _, tt := range tests {
		t.Run(tt.fileName+"|"+tt.mimeType, func(t *testing.T) {
			got, ok := Detect(tt.fileName, tt.mimeType)
			if ok {
				t.Errorf("Detect(%q, %q) = %v, want none", tt.fileName, tt.mimeType, got)
			}
			if got != FormatNone {
				t.Errorf("Detect(%q, %q) format = %v, want FormatNone", tt.fileName, tt.mimeType, got)
			}
		})
	}
}

func TestFormats_ReturnsCopy(t *testing.T) {
	f := Formats()
	if len(f) != 5 {
		t.Fatalf("len(Formats()) = %d, want 5", len(f))
	}
	f[0].Extensions[0] = ".mutated"

	if got, _ := Detect("data.csv", ""); got != FormatCSV {
		t.Errorf("registry was mutated through Formats(): Detect(data.csv) = %v", got)
	}
}

func TestDescriptor_EngineExtensions(t *testing.T) {
	tests := []struct {
		format LogicalFormat
		reader ReaderKind
		ext    string
	}{
		{FormatCSV, ReaderCSV, ""},
		{FormatParquet, ReaderParquet, "parquet"},
		{FormatJSON, ReaderJSON, "json"},
		{FormatExcel, ReaderExcel, ""},
		{FormatEmbeddedDB, ReaderAttach, ""},
	}

	for _, tt := range tests {
		d, ok := Descriptor(tt.format)
		if !ok {
			t.Fatalf("Descriptor(%v) not found", tt.format)
		}
		if d.Reader != tt.reader {
			t.Errorf("Descriptor(%v).Reader = %q, want %q", tt.format, d.Reader, tt.reader)
		}
		if d.Extension != tt.ext {
			t.Errorf("Descriptor(%v).Extension = %q, want %q", tt.format, d.Extension, tt.ext)
		}
	}

	if _, ok := Descriptor(FormatNone); ok {
		t.Error("Descriptor(FormatNone) should not exist")
	}
}

func TestParseFormat(t *testing.T) {
	for _, d := range Formats() {
		if got := ParseFormat(d.Format.String()); got != d.Format {
			t.Errorf("ParseFormat(%q) = %v, want %v", d.Format.String(), got, d.Format)
		}
	}
	if got := ParseFormat("xml"); got != FormatNone {
		t.Errorf("ParseFormat(xml) = %v, want FormatNone", got)
	}
}
