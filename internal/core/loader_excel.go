package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelLoader flattens the first sheet of a workbook to CSV and loads that.
type excelLoader struct {
	unzipLimit int64 // cap on the workbook's uncompressed size; 0 uses the library default
}

func (l excelLoader) load(ctx context.Context, s *Session, in loadInput, use func(Relation) error) (loadInfo, error) {
	const op = "Excel validation"

	text, err := l.firstSheetCSV(in.Data)
	if err != nil {
		return loadInfo{}, err
	}

	vf, err := s.Register("sheet.csv", text)
	if err != nil {
		return loadInfo{}, err
	}

	return csvLoader{op: op}.load(ctx, s, loadInput{Path: vf.Path(), Data: text}, use)
}

// options returns the workbook reader options.
func (l excelLoader) options() excelize.Options {
	if l.unzipLimit <= 0 {
		return excelize.Options{}
	}
	xmlLimit := l.unzipLimit
	if xmlLimit > 16<<20 {
		xmlLimit = 16 << 20
	}
	return excelize.Options{UnzipSizeLimit: l.unzipLimit, UnzipXMLSizeLimit: xmlLimit}
}

// firstSheetCSV renders the first sheet as CSV text. Rows are padded to the
// widest row so the CSV reader sees a rectangular table.
func (l excelLoader) firstSheetCSV(data []byte) ([]byte, error) {
	const op = "Excel validation"

	f, err := excelize.OpenReader(bytes.NewReader(data), l.options())
	if err != nil {
		return nil, engineLoadError(op, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, emptyContent(op, "workbook contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, engineLoadError(op, err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, emptyContent(op, "first sheet contains no data")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		if err := w.Write(row); err != nil {
			return nil, engineLoadError(op, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, engineLoadError(op, err)
	}

	if strings.TrimSpace(strings.ReplaceAll(buf.String(), ",", "")) == "" {
		return nil, emptyContent(op, "first sheet contains no data")
	}
	return buf.Bytes(), nil
}
