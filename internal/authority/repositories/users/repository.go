package users

import (
	"context"

	"github.com/offcampus/rollcall/internal/authority/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
