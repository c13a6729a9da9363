package sessions

import (
	"context"

	"github.com/offcampus/rollcall/internal/authority/models"
)

type Repository interface {
	Upsert(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context) ([]models.Session, error)
}
