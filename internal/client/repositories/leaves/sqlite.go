package leaves

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/dbx"
)

// SQLiteRepository implements Repository on a *sql.DB. Unlike the other
// repositories it needs the full handle, not just DBTX, because Delete runs
// a transaction of its own.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, req *models.LeaveRequest) error {
	query := `INSERT INTO leave_requests
			(id, subject_id, category, start_date, end_date, courses, remarks,
			 document_ref, review_status, sync_status, attempts, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.SubjectID, req.Category,
		req.StartDate.UnixMilli(), req.EndDate.UnixMilli(),
		strings.Join(req.AffectedCourses, ","), req.Remarks, req.DocumentRef,
		string(req.ReviewStatus), string(req.SyncStatus), req.Attempts,
		req.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert leave request: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete leave request: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if ra != 1 {
			return fmt.Errorf("wrong rows affected count: %d", ra)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO leave_tombstones (id, deleted_at, sync_status, attempts) VALUES (?, ?, 'Pending', 0)`,
			id, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert tombstone: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) SelectPendingOrFailed(ctx context.Context, limit int) ([]*models.LeaveRequest, error) {
	query := selectColumns + `
			WHERE sync_status IN ('Pending', 'Failed')
			ORDER BY created_at ASC
			LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending leave requests: %w", err)
	}
	defer rows.Close()

	var result []*models.LeaveRequest
	for rows.Next() {
		req, err := scanLeave(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE leave_requests SET sync_status = 'Synced', attempts = 0 WHERE id = ?`, id)
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE leave_requests SET sync_status = 'Failed', attempts = attempts + 1 WHERE id = ?`, id)
}

func (r *SQLiteRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.LeaveRequest, error) {
	query := selectColumns + `
			WHERE subject_id = ?
			ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select leave requests: %w", err)
	}
	defer rows.Close()

	var result []models.LeaveRequest
	for rows.Next() {
		req, err := scanLeave(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SelectPendingTombstones(ctx context.Context, limit int) ([]*models.Tombstone, error) {
	query := `SELECT id, deleted_at, sync_status, attempts FROM leave_tombstones
			WHERE sync_status IN ('Pending', 'Failed')
			ORDER BY deleted_at ASC
			LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select tombstones: %w", err)
	}
	defer rows.Close()

	var result []*models.Tombstone
	for rows.Next() {
		var (
			ts        models.Tombstone
			deletedMs int64
			syncS     string
		)
		if err := rows.Scan(&ts.ID, &deletedMs, &syncS, &ts.Attempts); err != nil {
			return nil, err
		}
		ts.DeletedAt = time.UnixMilli(deletedMs).UTC()
		ts.SyncStatus = models.SyncStatus(syncS)
		result = append(result, &ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ResolveTombstone(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM leave_tombstones WHERE id = ?`, id)
}

func (r *SQLiteRepository) MarkTombstoneFailed(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE leave_tombstones SET sync_status = 'Failed', attempts = attempts + 1 WHERE id = ?`, id)
}

func (r *SQLiteRepository) exec(ctx context.Context, query, id string) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

const selectColumns = `SELECT id, subject_id, category, start_date, end_date, courses,
			remarks, document_ref, review_status, sync_status, attempts, created_at
			FROM leave_requests`

func scanLeave(scan func(dest ...any) error) (*models.LeaveRequest, error) {
	var (
		req              models.LeaveRequest
		startMs, endMs   int64
		createdMs        int64
		courses          string
		reviewS, syncS   string
	)
	err := scan(&req.ID, &req.SubjectID, &req.Category, &startMs, &endMs,
		&courses, &req.Remarks, &req.DocumentRef, &reviewS, &syncS,
		&req.Attempts, &createdMs)
	if err != nil {
		return nil, err
	}

	req.StartDate = time.UnixMilli(startMs).UTC()
	req.EndDate = time.UnixMilli(endMs).UTC()
	req.CreatedAt = time.UnixMilli(createdMs).UTC()
	req.ReviewStatus = models.ReviewStatus(reviewS)
	req.SyncStatus = models.SyncStatus(syncS)
	if courses != "" {
		req.AffectedCourses = strings.Split(courses, ",")
	}
	return &req, nil
}
