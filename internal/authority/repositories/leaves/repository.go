package leaves

import (
	"context"

	"github.com/offcampus/rollcall/internal/authority/models"
)

type Repository interface {
	Upsert(ctx context.Context, req *models.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	Delete(ctx context.Context, id string) error
	SetReviewStatus(ctx context.Context, id, status string) error
}
