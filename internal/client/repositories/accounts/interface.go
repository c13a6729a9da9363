package accounts

import (
	"context"

	"github.com/offcampus/rollcall/internal/client/models"
)

// Repository describes persistence for local accounts. Accounts are created
// at sign-up and only ever read afterwards.
type Repository interface {
	// Insert stores a new account. A duplicate username returns
	// common.ErrorUsernameTaken.
	Insert(ctx context.Context, acct *models.Account) error

	// GetByUsername returns the account or common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}
