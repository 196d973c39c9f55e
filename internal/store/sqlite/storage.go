package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"void-backend/internal/store"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Compile-time check to ensure Storage implements store.Store
var _ store.Store = (*Storage)(nil)

// Storage is the single-node store backed by an SQLite file.
type Storage struct {
	db  *sql.DB
	now func() time.Time
	log *slog.Logger

	stampMu   sync.Mutex
	lastStamp int64
}

// Option customizes a Storage.
type Option func(*Storage)

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway database.
func New(ctx context.Context, dbPath string, opts ...Option) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// One writer at a time; the unique index arbitrates concurrent signups.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := newWithDB(db, opts...)
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := s.loadLastStamp(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func newWithDB(db *sql.DB, opts ...Option) *Storage {
	s := &Storage{
		db:  db,
		now: time.Now,
		log: slog.Default().With("component", "SQLiteStore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// stamp returns the created_at value for a new row as UTC unix nanoseconds.
// Stamps never go below one already issued, so a clock stepping backwards
// cannot reorder a transcript.
func (s *Storage) stamp() int64 {
	ns := s.now().UTC().UnixNano()
	s.stampMu.Lock()
	defer s.stampMu.Unlock()
	if ns < s.lastStamp {
		ns = s.lastStamp
	}
	s.lastStamp = ns
	return ns
}

func (s *Storage) loadLastStamp(ctx context.Context) error {
	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM messages`).Scan(&last); err != nil {
		return fmt.Errorf("failed to read last message stamp: %w", err)
	}
	s.lastStamp = last.Int64
	return nil
}

func fromStamp(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
