package attendance

import (
	"context"

	"github.com/offcampus/rollcall/internal/authority/models"
)

type Repository interface {
	Upsert(ctx context.Context, rec *models.AttendanceRecord) error
	GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
}
