// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. A session table is all this application persists.
//
// Queries are built with squirrel and the schema is owned by versioned
// migrations embedded in the binary (golang-migrate), so an existing
// sessions file is upgraded in place on startup.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aanand-mishra/lingo-admin/internal/config"
	"github.com/aanand-mishra/lingo-admin/internal/storage"
	"github.com/aanand-mishra/lingo-admin/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const sessionsTable = "sessions"

var sessionColumns = []string{"id", "user_id", "email", "role", "token", "expires_at", "created_at"}

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
	sq sq.StatementBuilderType
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, brings its schema up to
// date, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.StoragePath)
}

// Open is New for callers that only have a path.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: make db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return &SQLite{Db: db, sq: sq.StatementBuilder}, nil
}

// migrateUp applies every pending migration. ErrNoChange means the schema
// is already current.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrations init: %w", err)
	}

	// m.Close would close db as well, so only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations up: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateSession inserts a new row into the sessions table.
//
// Times are stored as unix seconds so expiry is a plain integer comparison.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateSession(ctx context.Context, sess types.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	query, args, err := s.sq.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(sess.ID, sess.UserID, sess.Email, sess.Role, sess.Token,
			sess.ExpiresAt.Unix(), sess.CreatedAt.Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("CreateSession: build: %w", err)
	}

	if _, err := s.Db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("CreateSession: exec: %w", err)
	}
	return nil
}

// GetSession fetches exactly one session row matched by id.
func (s *SQLite) GetSession(ctx context.Context, id string) (types.Session, error) {
	query, args, err := s.sq.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Session{}, fmt.Errorf("GetSession: build: %w", err)
	}

	var (
		sess               types.Session
		expires, createdAt int64
	)
	err = s.Db.QueryRowContext(ctx, query, args...).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.Email,
		&sess.Role,
		&sess.Token,
		&expires,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, storage.ErrSessionNotFound
		}
		return types.Session{}, fmt.Errorf("GetSession: scan: %w", err)
	}

	sess.ExpiresAt = time.Unix(expires, 0)
	sess.CreatedAt = time.Unix(createdAt, 0)
	return sess, nil
}

// DeleteSession removes a session row by id.
func (s *SQLite) DeleteSession(ctx context.Context, id string) error {
	query, args, err := s.sq.Delete(sessionsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("DeleteSession: build: %w", err)
	}

	if _, err := s.Db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("DeleteSession: exec: %w", err)
	}
	return nil
}

// DeleteExpiredSessions purges rows whose expiry is at or before now.
func (s *SQLite) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := s.sq.Delete(sessionsTable).Where(sq.LtOrEq{"expires_at": now.Unix()}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("DeleteExpiredSessions: build: %w", err)
	}

	res, err := s.Db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("DeleteExpiredSessions: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteExpiredSessions: rows affected: %w", err)
	}
	return n, nil
}
