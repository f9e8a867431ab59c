package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoaderFor(t *testing.T) {
	for _, d := range Formats() {
		if _, ok := loaderFor(d.Format, 0); !ok {
			t.Errorf("loaderFor(%v) missing", d.Format)
		}
	}
	if _, ok := loaderFor(FormatNone, 0); ok {
		t.Error("loaderFor(FormatNone) should not exist")
	}
}

func TestFirstLayout(t *testing.T) {
	t.Run("falls back until a layout succeeds", func(t *testing.T) {
		var tried []string
		rel, err := firstLayout(jsonLayouts, func(layout string) (Relation, error) {
			tried = append(tried, layout)
			if layout != "array" {
				return Relation{}, errors.New(layout + " failed")
			}
			return Relation{Table: "t"}, nil
		})
		if err != nil {
			t.Fatalf("firstLayout() error = %v", err)
		}
		if rel.Table != "t" {
			t.Errorf("Table = %q, want t", rel.Table)
		}
		if got := strings.Join(tried, ","); got != "auto,newline_delimited,array" {
			t.Errorf("tried = %s", got)
		}
	})

	t.Run("returns last error", func(t *testing.T) {
		_, err := firstLayout(jsonLayouts, func(layout string) (Relation, error) {
			return Relation{}, errors.New(layout + " failed")
		})
		if err == nil || err.Error() != "array failed" {
			t.Errorf("error = %v, want array failed", err)
		}
	})

	t.Run("stops at first success", func(t *testing.T) {
		calls := 0
		_, err := firstLayout(jsonLayouts, func(string) (Relation, error) {
			calls++
			return Relation{}, nil
		})
		if err != nil || calls != 1 {
			t.Errorf("calls = %d, err = %v, want 1, nil", calls, err)
		}
	})
}

func TestJSONLoadError(t *testing.T) {
	err := jsonLoadError(errors.New("Invalid Input Error: malformed JSON"), []byte("[1,2,]"))

	if !strings.HasPrefix(err.Error(), "JSON validation failed (tried formats: auto, newline_delimited, array): Invalid Input Error: malformed JSON") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("Error() = %q, want syntax locator", err.Error())
	}
	if KindOf(err) != KindEngineLoad {
		t.Errorf("KindOf() = %v, want EngineLoad", KindOf(err))
	}
}

func TestJSONSyntaxError(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"array of objects", `[{"a":1},{"a":2}]`, false},
		{"newline delimited", "{\"a\":1}\n{\"a\":2}\n", false},
		{"truncated", `[{"a":1},`, true},
		{"trailing comma", `[1,2,]`, true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jsonSyntaxError([]byte(tt.input))
			if (got != "") != tt.wantErr {
				t.Errorf("jsonSyntaxError(%q) = %q, wantErr %v", tt.input, got, tt.wantErr)
			}
		})
	}
}

// workbook builds an xlsx file whose first sheet holds rows.
func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestExcelFirstSheetCSV(t *testing.T) {
	t.Run("ragged rows are padded", func(t *testing.T) {
		data := workbook(t, [][]any{
			{"name", "qty", "note"},
			{"apple", 3},
			{"pear", 5, "ripe, sweet"},
		})

		got, err := excelLoader{}.firstSheetCSV(data)
		if err != nil {
			t.Fatalf("firstSheetCSV() error = %v", err)
		}
		want := "name,qty,note\napple,3,\npear,5,\"ripe, sweet\"\n"
		if string(got) != want {
			t.Errorf("firstSheetCSV() = %q, want %q", got, want)
		}
	})

	t.Run("empty first sheet", func(t *testing.T) {
		_, err := excelLoader{}.firstSheetCSV(workbook(t, nil))
		if !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("error = %v, want EmptyContent", err)
		}
		if err.Error() != "Excel validation failed: first sheet contains no data" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := excelLoader{}.firstSheetCSV([]byte("definitely not a zip"))
		if !errors.Is(err, ErrEngineLoad) {
			t.Fatalf("error = %v, want EngineLoad", err)
		}
		if !strings.HasPrefix(err.Error(), "Excel validation failed:") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}
