// Package repomanager wires the PostgreSQL repositories together and runs
// schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/offcampus/rollcall/internal/authority/migrations"
	"github.com/offcampus/rollcall/internal/authority/repositories/attendance"
	"github.com/offcampus/rollcall/internal/authority/repositories/leaves"
	"github.com/offcampus/rollcall/internal/authority/repositories/refreshtokens"
	"github.com/offcampus/rollcall/internal/authority/repositories/sessions"
	"github.com/offcampus/rollcall/internal/authority/repositories/users"
	"github.com/offcampus/rollcall/internal/dbx"
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Attendance(db dbx.DBTX) attendance.Repository {
	return attendance.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Leaves(db dbx.DBTX) leaves.Repository {
	return leaves.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
