package core

// engine.go owns the in-process analytical database.
//
// A single in-memory DuckDB instance is opened per Engine. Every validate or
// convert call takes its own dedicated connection from it (see session.go), so
// temp tables never leak between calls.

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcboeker/go-duckdb"
)

// EngineConfig holds settings applied to every engine connection.
type EngineConfig struct {
	MemoryLimit       string // e.g. "512MB"; empty leaves the engine default
	Threads           int    // 0 leaves the engine default
	ExtensionDir      string // where extensions are installed/loaded from
	OfflineExtensions bool   // never download extensions
	TempDir           string // spill directory and non-Linux virtual files
}

// Engine is the embedded analytical engine shared by all sessions.
type Engine struct {
	db  *sql.DB
	cfg EngineConfig
}

// OpenEngine starts an in-memory engine configured by cfg.
func OpenEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	settings := engineSettings(cfg)

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		for _, stmt := range settings {
			if _, err := execer.ExecContext(context.Background(), stmt, nil); err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping engine: %w", err)
	}

	slog.Debug("engine opened",
		"memory_limit", cfg.MemoryLimit,
		"threads", cfg.Threads,
		"offline_extensions", cfg.OfflineExtensions,
	)

	return &Engine{db: db, cfg: cfg}, nil
}

// engineSettings returns the SET statements run on each new connection.
func engineSettings(cfg EngineConfig) []string {
	var stmts []string
	if cfg.MemoryLimit != "" {
		stmts = append(stmts, fmt.Sprintf("SET memory_limit = %s", quoteLiteral(cfg.MemoryLimit)))
	}
	if cfg.Threads > 0 {
		stmts = append(stmts, fmt.Sprintf("SET threads = %d", cfg.Threads))
	}
	if cfg.ExtensionDir != "" {
		stmts = append(stmts, fmt.Sprintf("SET extension_directory = %s", quoteLiteral(cfg.ExtensionDir)))
	}
	if cfg.OfflineExtensions {
		stmts = append(stmts, "SET autoinstall_known_extensions = false")
	}
	if cfg.TempDir != "" {
		stmts = append(stmts, fmt.Sprintf("SET temp_directory = %s", quoteLiteral(cfg.TempDir)))
	}
	return stmts
}

// Close shuts the engine down. Sessions must not be in flight.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Ping checks that the engine answers queries.
func (e *Engine) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Stats exposes connection pool statistics for health reporting.
func (e *Engine) Stats() sql.DBStats {
	return e.db.Stats()
}

// loadExtension loads an engine extension on conn, installing it first when
// allowed. Extensions bundled with the driver load without network access.
// name always comes from the format registry.
func (e *Engine) loadExtension(ctx context.Context, conn *sql.Conn, name string) error {
	if _, err := conn.ExecContext(ctx, "LOAD "+name); err == nil {
		return nil
	} else if e.cfg.OfflineExtensions {
		return fmt.Errorf("load %s extension in offline mode (check extension directory %q): %w", name, e.cfg.ExtensionDir, err)
	}

	if _, err := conn.ExecContext(ctx, "INSTALL "+name); err != nil {
		return fmt.Errorf("install %s extension: %w", name, err)
	}
	if _, err := conn.ExecContext(ctx, "LOAD "+name); err != nil {
		return fmt.Errorf("load %s extension after install: %w", name, err)
	}
	return nil
}

// isConversionError reports whether err is the engine's value conversion error.
func isConversionError(err error) bool {
	if err == nil {
		return false
	}
	var de *duckdb.Error
	if errors.As(err, &de) && de.Type == duckdb.ErrorTypeConversion {
		return true
	}
	return strings.Contains(err.Error(), "Conversion Error")
}
