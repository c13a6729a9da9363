package attendance

import (
	"context"

	"github.com/offcampus/rollcall/internal/client/models"
)

// Repository describes persistence for attendance records. Records are
// insert-only; after creation only the sync columns ever change.
type Repository interface {
	// Insert stores a brand-new record. The id must be unique.
	Insert(ctx context.Context, rec *models.AttendanceRecord) error

	// SelectPendingOrFailed returns up to limit records awaiting upload,
	// oldest first, so staleness stays bounded.
	SelectPendingOrFailed(ctx context.Context, limit int) ([]*models.AttendanceRecord, error)

	// MarkSynced sets the record's sync status to Synced and clears the
	// attempt counter.
	MarkSynced(ctx context.Context, id string) error

	// MarkFailed sets the record's sync status to Failed and increments the
	// attempt counter.
	MarkFailed(ctx context.Context, id string) error

	// ListBySubject returns the subject's records, newest check-in first.
	ListBySubject(ctx context.Context, subjectID string) ([]models.AttendanceRecord, error)
}
