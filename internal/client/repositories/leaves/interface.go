package leaves

import (
	"context"

	"github.com/offcampus/rollcall/internal/client/models"
)

// Repository describes persistence for leave requests and their delete
// tombstones. Deleting a request removes the row immediately and records a
// tombstone in the same transaction, so the remote delete is never lost.
type Repository interface {
	Insert(ctx context.Context, req *models.LeaveRequest) error

	// Delete removes the request and writes a tombstone atomically.
	Delete(ctx context.Context, id string) error

	SelectPendingOrFailed(ctx context.Context, limit int) ([]*models.LeaveRequest, error)
	MarkSynced(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error

	// ListBySubject returns the subject's requests, newest first.
	ListBySubject(ctx context.Context, subjectID string) ([]models.LeaveRequest, error)

	// SelectPendingTombstones returns tombstones awaiting a remote delete,
	// oldest first.
	SelectPendingTombstones(ctx context.Context, limit int) ([]*models.Tombstone, error)

	// ResolveTombstone removes a tombstone once the authority confirmed the
	// delete.
	ResolveTombstone(ctx context.Context, id string) error

	MarkTombstoneFailed(ctx context.Context, id string) error
}
