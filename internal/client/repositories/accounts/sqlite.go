package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/offcampus/rollcall/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, acct *models.Account) error {
	query := `INSERT INTO local_accounts (id, username, display_name, password_hash, salt, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		acct.ID, acct.Username, acct.DisplayName, acct.PasswordHash, acct.Salt,
		acct.CreatedAt.UnixMilli())
	if err != nil {
		// sqlite reports unique violations by message; there is no portable
		// error code through database/sql
		if strings.Contains(err.Error(), "UNIQUE") {
			return common.ErrorUsernameTaken
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT id, username, display_name, password_hash, salt, created_at
			FROM local_accounts WHERE username = ?`
	row := r.db.QueryRowContext(ctx, query, username)

	var (
		acct      models.Account
		createdMs int64
	)
	err := row.Scan(&acct.ID, &acct.Username, &acct.DisplayName, &acct.PasswordHash, &acct.Salt, &createdMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select account: %w", err)
	}
	acct.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &acct, nil
}
