package core

// loader.go dispatches a detected format to the loader that turns a
// registered buffer into a queryable relation.
//
// Each loader scopes the relation it creates: it hands the relation to use
// and releases it (DROP, DETACH) before returning, on success and failure.

import (
	"context"
	"fmt"
)

// loadInput is what a loader works from.
type loadInput struct {
	Path string // engine path of the registered buffer
	Data []byte // raw bytes, for loaders that parse outside the engine
}

// loadInfo carries loader-specific additions to the validation result.
type loadInfo struct {
	Tables   []string
	Advisory string
}

// loader turns a registered buffer into a relation and passes it to use.
type loader interface {
	load(ctx context.Context, s *Session, in loadInput, use func(Relation) error) (loadInfo, error)
}

// loaderFor returns the loader for a format. The set of formats is closed,
// so every LogicalFormat except FormatNone has exactly one loader.
// unzipLimit caps the uncompressed size of zip-based formats.
func loaderFor(f LogicalFormat, unzipLimit int64) (loader, bool) {
	switch f {
	case FormatCSV:
		return csvLoader{op: "CSV validation"}, true
	case FormatParquet:
		return parquetLoader{}, true
	case FormatJSON:
		return jsonLoader{}, true
	case FormatExcel:
		return excelLoader{unzipLimit: unzipLimit}, true
	case FormatEmbeddedDB:
		return dbFileLoader{}, true
	default:
		return nil, false
	}
}

// dropQuietly drops a relation, logging instead of failing.
func dropQuietly(ctx context.Context, s *Session, rel Relation) {
	if err := s.DropRelation(context.WithoutCancel(ctx), rel); err != nil {
		s.logger.Warn("drop relation failed", "relation", rel.Table, "error", err)
	}
}

// csvLoader reads delimited text with the engine's auto-detecting reader.
type csvLoader struct {
	op string
}

func (l csvLoader) load(ctx context.Context, s *Session, in loadInput, use func(Relation) error) (loadInfo, error) {
	rel, err := l.create(ctx, s, in.Path)
	if err != nil {
		return loadInfo{}, err
	}
	defer dropQuietly(ctx, s, rel)

	return loadInfo{}, use(rel)
}

// create loads the CSV at path into a temp relation owned by the session.
func (l csvLoader) create(ctx context.Context, s *Session, path string) (Relation, error) {
	op := l.op
	if op == "" {
		op = "CSV validation"
	}

	query := fmt.Sprintf("SELECT * FROM read_csv_auto(%s, header = true)", quoteLiteral(path))
	rel, err := s.CreateTempTable(ctx, "csv", query)
	if err != nil {
		return Relation{}, engineLoadError(op, err)
	}
	return rel, nil
}

// parquetLoader reads Parquet with the engine's columnar reader.
type parquetLoader struct{}

func (parquetLoader) load(ctx context.Context, s *Session, in loadInput, use func(Relation) error) (loadInfo, error) {
	const op = "Parquet validation"

	d, _ := Descriptor(FormatParquet)
	if err := s.LoadExtension(ctx, d.Extension); err != nil {
		return loadInfo{}, engineLoadError(op, err)
	}

	query := fmt.Sprintf("SELECT * FROM read_parquet(%s)", quoteLiteral(in.Path))
	rel, err := s.CreateTempTable(ctx, "parquet", query)
	if err != nil {
		return loadInfo{}, engineLoadError(op, err)
	}
	defer dropQuietly(ctx, s, rel)

	return loadInfo{}, use(rel)
}
