package core

import (
	"context"
	"fmt"
)

// tableShape is the structure and sample of one relation.
type tableShape struct {
	Names []string
	Types []string
	Rows  [][]any
}

// introspect reads column metadata and up to limit rows from rel.
//
// Metadata is looked up by the bare table name, narrowed to the relation's
// catalog when it has one; the data query uses the qualified name.
func introspect(ctx context.Context, s *Session, rel Relation, limit int) (tableShape, error) {
	names, types, err := columnMetadata(ctx, s, rel)
	if err != nil {
		return tableShape{}, fmt.Errorf("read column metadata for %s: %w", rel.Table, err)
	}

	rows, err := sampleRows(ctx, s, rel, limit)
	if err != nil {
		return tableShape{}, fmt.Errorf("read preview rows for %s: %w", rel.Table, err)
	}

	return tableShape{Names: names, Types: types, Rows: rows}, nil
}

// columnMetadata returns column names and engine type names in ordinal order.
func columnMetadata(ctx context.Context, s *Session, rel Relation) ([]string, []string, error) {
	query := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_name = ?`
	args := []any{rel.Table}
	if rel.Catalog != "" {
		query += " AND table_catalog = ?"
		args = append(args, rel.Catalog)
	}
	if rel.Schema != "" {
		query += " AND table_schema = ?"
		args = append(args, rel.Schema)
	}
	query += " ORDER BY ordinal_position"

	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	names := []string{}
	types := []string{}
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		types = append(types, typ)
	}
	return names, types, rows.Err()
}

// sampleRows returns up to limit rows as generic values.
func sampleRows(ctx context.Context, s *Session, rel Relation, limit int) ([][]any, error) {
	rows, err := s.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", rel.Qualified, limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := [][]any{}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make([]any, len(cols))
		for i, v := range raw {
			row[i] = columnValue(cols[i].DatabaseTypeName(), v)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
