// Package leaves stores the authoritative leave requests uploaded by
// clients and their review outcomes.
package leaves

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/offcampus/rollcall/internal/authority/models"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/offcampus/rollcall/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes the request keyed by id. The review status is only taken
// from the upload on first insert; a replayed upload must not reset a
// review decision already made here.
func (r *PostgresRepository) Upsert(ctx context.Context, req *models.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests
			(id, subject_id, category, start_date, end_date,
			 affected_courses, remarks, document_ref, review_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			subject_id = EXCLUDED.subject_id,
			category = EXCLUDED.category,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			affected_courses = EXCLUDED.affected_courses,
			remarks = EXCLUDED.remarks,
			document_ref = EXCLUDED.document_ref,
			created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.SubjectID, req.Category, req.StartDate, req.EndDate,
		strings.Join(req.AffectedCourses, ","), req.Remarks, req.DocumentRef,
		req.ReviewStatus, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	query := `
		SELECT id, subject_id, category, start_date, end_date,
		       affected_courses, remarks, document_ref, review_status, created_at, received_at
		FROM leave_requests
		WHERE id = $1
	`
	req := &models.LeaveRequest{}
	var courses string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.SubjectID, &req.Category, &req.StartDate, &req.EndDate,
		&courses, &req.Remarks, &req.DocumentRef, &req.ReviewStatus, &req.CreatedAt, &req.ReceivedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if courses != "" {
		req.AffectedCourses = strings.Split(courses, ",")
	}
	return req, nil
}

// Delete removes the request. Deleting an id the authority never saw, or
// already deleted, is not an error: the client's delete intent is satisfied
// either way.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM leave_requests
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetReviewStatus records a review decision.
func (r *PostgresRepository) SetReviewStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE leave_requests
		SET review_status = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
