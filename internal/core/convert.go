package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// castColumn is one column of a conversion projection.
type castColumn struct {
	Name   string // source column name, kept in the output
	Target string // engine type name; empty keeps the inferred type
}

// Convert recasts the columns of a CSV upload to user-chosen types and
// returns the result as new CSV bytes with a header row.
//
// ColumnMapping maps source columns to the names the user chose; TypeMapping
// is keyed by those chosen names (or by the source name when a column is not
// renamed). Output columns keep their source names. Non-CSV formats are
// returned unchanged. Any value that cannot be cast fails the whole call
// with a CastFailure naming the column and value.
func (svc *Service) Convert(ctx context.Context, req ConvertRequest) ([]byte, error) {
	start := time.Now()
	logger := loggerFrom(ctx).With("file", req.FileName, "bytes", len(req.Data))

	name, _ := innerName(req.FileName)
	format, ok := Detect(name, req.MIMEType)
	if !ok {
		return nil, unrecognizedFormat(req.FileName, req.MIMEType)
	}
	if format != FormatCSV {
		logger.Debug("conversion skipped", "format", format.String())
		return req.Data, nil
	}

	if err := checkTargetTypes(req.TypeMapping); err != nil {
		return nil, err
	}

	data, err := svc.prepare(req.Data, req.FileName, format)
	if err != nil {
		return nil, err
	}

	var out []byte
	err = svc.engine.WithSession(ctx, data, "source.csv", func(s *Session, path string) error {
		b, err := convertCSV(ctx, s, path, req.ColumnMapping, req.TypeMapping)
		out = b
		return err
	})
	if err != nil {
		logger.Info("conversion failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	logger.Info("file converted",
		"casts", len(req.TypeMapping),
		"output_bytes", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// checkTargetTypes rejects type names that cannot be spliced into a CAST.
// Keys are sorted so the reported column is deterministic.
func checkTargetTypes(types TypeMapping) error {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !validTypeName(types[k]) {
			return invalidTargetType(k, types[k], nil)
		}
	}
	return nil
}

// invalidTargetType reports an unusable type name as a cast failure.
func invalidTargetType(column, target string, err error) *IngestError {
	msg := fmt.Sprintf("invalid target type %q for column %q", target, column)
	if err != nil {
		msg += ": " + engineMessage(err)
	}
	return &IngestError{Kind: KindCastFailure, Op: "conversion", Message: msg, Column: column, Err: err}
}

// convertCSV loads the CSV at path, projects the casts and writes the result
// to a session output file.
func convertCSV(ctx context.Context, s *Session, path string, columns ColumnMapping, types TypeMapping) ([]byte, error) {
	src, err := csvLoader{op: "CSV validation"}.create(ctx, s, path)
	if err != nil {
		return nil, err
	}
	defer dropQuietly(ctx, s, src)

	names, _, err := columnMetadata(ctx, s, src)
	if err != nil {
		return nil, fmt.Errorf("read source columns: %w", err)
	}
	cols := castPlan(names, columns, types)

	cast, err := s.CreateTempTable(ctx, "cast", "SELECT "+projection(cols)+" FROM "+src.Qualified)
	if err != nil {
		return nil, diagnoseCast(ctx, s, src, cols, err)
	}
	defer dropQuietly(ctx, s, cast)

	out, err := s.CreateOutput("converted.csv")
	if err != nil {
		return nil, err
	}

	copyStmt := fmt.Sprintf("COPY %s TO %s (FORMAT CSV, HEADER, USE_TMP_FILE false)", cast.Qualified, quoteLiteral(out.Path()))
	if _, err := s.Exec(ctx, copyStmt); err != nil {
		return nil, fmt.Errorf("write converted CSV: %w", err)
	}

	b, err := out.Bytes()
	if err != nil {
		return nil, fmt.Errorf("read converted CSV: %w", err)
	}
	return b, nil
}

// castPlan pairs each source column, in catalog order, with its target type.
func castPlan(names []string, columns ColumnMapping, types TypeMapping) []castColumn {
	plan := make([]castColumn, len(names))
	for i, name := range names {
		key := name
		if renamed, ok := columns[name]; ok && renamed != "" {
			key = renamed
		}
		target := strings.TrimSpace(types[key])
		plan[i] = castColumn{Name: name, Target: target}
	}
	return plan
}

// projection renders the SELECT list for a cast plan.
func projection(cols []castColumn) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		id := quoteIdent(c.Name)
		if c.Target == "" {
			parts[i] = id
			continue
		}
		parts[i] = fmt.Sprintf("CAST(%s AS %s) AS %s", id, c.Target, id)
	}
	return strings.Join(parts, ", ")
}

// diagnoseCast turns a failed cast projection into a CastFailure naming the
// first offending column and value. The engine's own message is kept.
func diagnoseCast(ctx context.Context, s *Session, src Relation, cols []castColumn, err error) error {
	if ctx.Err() != nil {
		return err
	}
	msg := engineMessage(err)

	if strings.Contains(msg, "Type with name") {
		for _, c := range cols {
			if c.Target != "" && strings.Contains(strings.ToUpper(msg), strings.ToUpper(c.Target)) {
				return invalidTargetType(c.Name, c.Target, err)
			}
		}
		return invalidTargetType("", "", err)
	}

	if !isConversionError(err) {
		return fmt.Errorf("convert columns: %w", err)
	}

	for _, c := range cols {
		if c.Target == "" {
			continue
		}
		value, found, perr := firstUncastable(ctx, s, src, c)
		if perr != nil {
			s.logger.Warn("cast probe failed", "column", c.Name, "error", perr)
			continue
		}
		if found {
			return castFailure(c.Name, value, c.Target, err)
		}
	}
	return castFailure("", "", "", err)
}

// firstUncastable finds a non-null value of c that does not cast to its target.
func firstUncastable(ctx context.Context, s *Session, src Relation, c castColumn) (string, bool, error) {
	id := quoteIdent(c.Name)
	query := fmt.Sprintf(
		"SELECT CAST(%s AS VARCHAR) FROM %s WHERE %s IS NOT NULL AND TRY_CAST(%s AS %s) IS NULL LIMIT 1",
		id, src.Qualified, id, id, c.Target,
	)

	var value string
	err := s.QueryRow(ctx, query).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
