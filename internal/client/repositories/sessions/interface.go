package sessions

import (
	"context"

	"github.com/offcampus/rollcall/internal/client/models"
)

// Repository describes persistence for Session rows. Sessions arrive from
// the owner (or a seed) and are read-only for the subject, so there is no
// delete operation.
type Repository interface {
	// Save upserts a session by id.
	Save(ctx context.Context, s *models.Session) error

	// GetByID returns one session or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// List returns all sessions ordered by start time ascending.
	List(ctx context.Context) ([]models.Session, error)
}
