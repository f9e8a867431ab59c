package core

import (
	"context"
	"fmt"
)

// dbFileLoader attaches an embedded database file read-only and exposes its
// first table. The catalog is detached before load returns.
type dbFileLoader struct{}

func (dbFileLoader) load(ctx context.Context, s *Session, in loadInput, use func(Relation) error) (loadInfo, error) {
	const op = "Database validation"

	alias, err := s.Attach(ctx, in.Path)
	if err != nil {
		return loadInfo{}, engineLoadError(op, err)
	}
	defer func() {
		if err := s.Detach(context.WithoutCancel(ctx), alias); err != nil {
			s.logger.Warn("detach failed", "alias", alias, "error", err)
		}
	}()

	tables, err := listTables(ctx, s, alias)
	if err != nil {
		return loadInfo{}, engineLoadError(op, err)
	}
	if len(tables) == 0 {
		return loadInfo{}, emptyContent(op, "no tables found in database file")
	}

	// Only the first table is validated.
	first := tables[0]
	rel := Relation{
		Catalog:   alias,
		Schema:    "main",
		Table:     first,
		Qualified: qualify(alias, "main", first),
	}

	var info loadInfo
	if len(tables) > 1 {
		info.Tables = tables
		info.Advisory = fmt.Sprintf("Database contains %d tables; showing structure of first table %q only", len(tables), first)
	}

	return info, use(rel)
}

// listTables returns the base tables in the catalog's default schema, in
// name order. Validation only looks at the first, so the table shown is the
// alphabetically first one, not necessarily the one holding the main data.
func listTables(ctx context.Context, s *Session, catalog string) ([]string, error) {
	rows, err := s.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_catalog = ? AND table_schema = 'main' AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
		catalog)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
