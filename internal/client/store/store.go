// Package store opens the local SQLite database, applies embedded goose
// migrations, and hands out typed repositories. The store is constructed
// once at startup and injected into the services; there is no package-level
// handle.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/offcampus/rollcall/internal/client/migrations"
	"github.com/offcampus/rollcall/internal/client/repositories/accounts"
	"github.com/offcampus/rollcall/internal/client/repositories/attendance"
	"github.com/offcampus/rollcall/internal/client/repositories/leaves"
	"github.com/offcampus/rollcall/internal/client/repositories/sessions"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB

	Sessions   sessions.Repository
	Attendance attendance.Repository
	Leaves     leaves.Repository
	Accounts   accounts.Repository
}

// Open opens (creating if needed) the SQLite database at dsn and runs
// pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{
		db:         db,
		Sessions:   sessions.NewSQLiteRepository(db),
		Attendance: attendance.NewSQLiteRepository(db),
		Leaves:     leaves.NewSQLiteRepository(db),
		Accounts:   accounts.NewSQLiteRepository(db),
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// Conn exposes the raw handle for callers that need transactions.
func (s *Store) Conn() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}
