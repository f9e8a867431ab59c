package core

// session.go implements scoped engine sessions.
//
// A Session owns one dedicated engine connection plus every virtual file,
// temp relation and attached catalog created through it. WithSession is the
// only way to obtain one, and it releases everything on every exit path:
//
//	Unopened -> Registered -> RelationCreated -> Introspected -> Released
//
// Loaders may release resources early (for example DETACH right after reading
// a database file); the session only releases what is still tracked.

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/fileprobe/internal/vfs"
	"github.com/google/uuid"
)

// Session is a single-call view of the engine. It is not safe for concurrent use.
type Session struct {
	ID string

	engine *Engine
	conn   *sql.Conn
	files  *vfs.Store
	logger *slog.Logger

	relations []string // quoted temp relation names, creation order
	attached  []string // catalog aliases, attach order
	loaded    map[string]bool
	seq       int
}

// WithSession opens a session, registers data as the virtual file
// virtualName, and runs fn with the session and the file's engine path.
//
// The connection, virtual files, temp relations and attached catalogs are
// released before WithSession returns, whether fn succeeds, fails or panics.
// Cleanup failures are logged and never replace fn's error.
func (e *Engine) WithSession(ctx context.Context, data []byte, virtualName string, fn func(s *Session, path string) error) (err error) {
	s, err := e.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.release(); cerr != nil {
			s.logger.Warn("session cleanup failed", "error", cerr)
		}
	}()

	vf, err := s.Register(virtualName, data)
	if err != nil {
		return err
	}

	return fn(s, vf.Path())
}

// openSession acquires a dedicated connection for a new session.
func (e *Engine) openSession(ctx context.Context) (*Session, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, engineLoadError("engine connection", err)
	}

	id := uuid.New().String()
	s := &Session{
		ID:     id,
		engine: e,
		conn:   conn,
		files:  vfs.New(e.cfg.TempDir),
		logger: loggerFrom(ctx).With("session_id", id),
		loaded: make(map[string]bool),
	}
	s.logger.Debug("session opened")
	return s, nil
}

// Register makes data addressable to the engine under name.
func (s *Session) Register(name string, data []byte) (*vfs.File, error) {
	vf, err := s.files.Register(s.fileName(name), data)
	if err != nil {
		return nil, engineLoadError("register buffer", err)
	}
	s.logger.Debug("buffer registered", "name", name, "bytes", len(data))
	return vf, nil
}

// CreateOutput registers an empty virtual file for the engine to write into.
func (s *Session) CreateOutput(name string) (*vfs.File, error) {
	vf, err := s.files.Create(s.fileName(name))
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", name, err)
	}
	return vf, nil
}

// fileName scopes a virtual file name to the session.
func (s *Session) fileName(name string) string {
	return "fp-" + s.ID[:8] + "-" + name
}

// relationName returns a session-unique relation name.
func (s *Session) relationName(purpose string) string {
	s.seq++
	return fmt.Sprintf("fp_%s_%d_%s", strings.ReplaceAll(s.ID[:8], "-", ""), s.seq, purpose)
}

// CreateTempTable materializes selectSQL into a new temp relation.
// The relation is dropped when the session is released.
func (s *Session) CreateTempTable(ctx context.Context, purpose, selectSQL string) (Relation, error) {
	name := s.relationName(purpose)
	quoted := quoteIdent(name)

	if _, err := s.conn.ExecContext(ctx, "CREATE TEMP TABLE "+quoted+" AS "+selectSQL); err != nil {
		return Relation{}, err
	}
	s.relations = append(s.relations, quoted)
	s.logger.Debug("relation created", "relation", name)

	return Relation{Table: name, Qualified: quoted}, nil
}

// DropRelation drops a temp relation created by this session.
func (s *Session) DropRelation(ctx context.Context, rel Relation) error {
	for i, q := range s.relations {
		if q == rel.Qualified {
			s.relations = append(s.relations[:i], s.relations[i+1:]...)
			break
		}
	}
	_, err := s.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+rel.Qualified)
	return err
}

// Attach mounts a database file read-only under a session-unique alias.
func (s *Session) Attach(ctx context.Context, path string) (string, error) {
	alias := "fp_db_" + strings.ReplaceAll(s.ID, "-", "")[:12]
	if len(s.attached) > 0 {
		alias = fmt.Sprintf("%s_%d", alias, len(s.attached))
	}

	stmt := fmt.Sprintf("ATTACH %s AS %s (READ_ONLY)", quoteLiteral(path), quoteIdent(alias))
	if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
		return "", err
	}
	s.attached = append(s.attached, alias)
	s.logger.Debug("catalog attached", "alias", alias)
	return alias, nil
}

// Detach unmounts a catalog attached by this session.
func (s *Session) Detach(ctx context.Context, alias string) error {
	for i, a := range s.attached {
		if a == alias {
			s.attached = append(s.attached[:i], s.attached[i+1:]...)
			break
		}
	}
	_, err := s.conn.ExecContext(ctx, "DETACH DATABASE IF EXISTS "+quoteIdent(alias))
	return err
}

// LoadExtension makes an engine extension available to this session.
func (s *Session) LoadExtension(ctx context.Context, name string) error {
	if name == "" || s.loaded[name] {
		return nil
	}
	if err := s.engine.loadExtension(ctx, s.conn, name); err != nil {
		return err
	}
	s.loaded[name] = true
	return nil
}

// Exec runs a statement on the session connection.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

// Query runs a query on the session connection.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRow runs a single-row query on the session connection.
func (s *Session) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn.QueryRowContext(ctx, query, args...)
}

// release frees every resource still owned by the session, in reverse order
// of acquisition. It uses a fresh context so a cancelled call still cleans up.
func (s *Session) release() error {
	ctx := context.Background()
	var errs []error

	for i := len(s.relations) - 1; i >= 0; i-- {
		if _, err := s.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.relations[i]); err != nil {
			errs = append(errs, fmt.Errorf("drop %s: %w", s.relations[i], err))
		}
	}
	s.relations = nil

	for i := len(s.attached) - 1; i >= 0; i-- {
		if _, err := s.conn.ExecContext(ctx, "DETACH DATABASE IF EXISTS "+quoteIdent(s.attached[i])); err != nil {
			errs = append(errs, fmt.Errorf("detach %s: %w", s.attached[i], err))
		}
	}
	s.attached = nil

	if err := s.files.Close(); err != nil {
		errs = append(errs, err)
	}

	// A connection that could not be cleaned is discarded instead of being
	// returned to the pool, so nothing it still holds is visible to later calls.
	if len(errs) > 0 {
		_ = s.conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, fmt.Errorf("close connection: %w", err))
	}

	s.logger.Debug("session released")
	return errors.Join(errs...)
}
