package core

import (
	"strings"
	"testing"
)

func TestShouldFullyValidate(t *testing.T) {
	tests := []struct {
		size int64
		want bool
	}{
		{0, true},
		{999_999_999, true},
		{1_000_000_000, false},
		{5_000_000_000, false},
	}

	for _, tt := range tests {
		if got := ShouldFullyValidate(tt.size); got != tt.want {
			t.Errorf("ShouldFullyValidate(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestShouldFullyValidate_CustomThreshold(t *testing.T) {
	if shouldFullyValidate(100, 100) {
		t.Error("shouldFullyValidate(100, 100) = true, want false")
	}
	if !shouldFullyValidate(99, 100) {
		t.Error("shouldFullyValidate(99, 100) = false, want true")
	}
	if !shouldFullyValidate(99, 0) {
		t.Error("zero threshold should fall back to the default")
	}
}

func TestSizeBypassResult(t *testing.T) {
	res := sizeBypassResult(FormatParquet, 1_500_000_000)

	if !res.IsValid {
		t.Error("IsValid = false, want true")
	}
	if res.Format != FormatParquet {
		t.Errorf("Format = %v, want parquet", res.Format)
	}
	if len(res.ColumnNames) != 0 || res.ColumnCount != 0 {
		t.Errorf("schema not empty: %v", res.ColumnNames)
	}
	want := "File too large for client-side validation (1500000000 bytes); detailed validation will be performed by the server"
	if res.Error != want {
		t.Errorf("Error = %q, want %q", res.Error, want)
	}
	if res.Code != "SIZE001" {
		t.Errorf("Code = %q, want SIZE001", res.Code)
	}
	if !strings.Contains(res.Error, "server") {
		t.Error("advisory should mention server-side validation")
	}
}
