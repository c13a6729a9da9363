// Package attendance stores the authoritative attendance records uploaded
// by clients.
package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// Upsert writes the record keyed by id. A replayed upload overwrites the
// row with identical content, so at-least-once delivery from clients never
// produces duplicates.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance
			(id, session_id, subject_id, check_in_time, status, reason,
			 lat, lng, accuracy_m, photo_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			subject_id = EXCLUDED.subject_id,
			check_in_time = EXCLUDED.check_in_time,
			status = EXCLUDED.status,
			reason = EXCLUDED.reason,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			accuracy_m = EXCLUDED.accuracy_m,
			photo_ref = EXCLUDED.photo_ref,
			created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.SessionID, rec.SubjectID, rec.CheckInTime, rec.Status, rec.Reason,
		rec.Lat, rec.Lng, rec.AccuracyM, rec.PhotoRef, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := `
		SELECT id, session_id, subject_id, check_in_time, status, reason,
		       lat, lng, accuracy_m, photo_ref, created_at, received_at
		FROM attendance
		WHERE id = $1
	`
	rec := &models.AttendanceRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.SessionID, &rec.SubjectID, &rec.CheckInTime, &rec.Status, &rec.Reason,
		&rec.Lat, &rec.Lng, &rec.AccuracyM, &rec.PhotoRef, &rec.CreatedAt, &rec.ReceivedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	query := `
		SELECT id, session_id, subject_id, check_in_time, status, reason,
		       lat, lng, accuracy_m, photo_ref, created_at, received_at
		FROM attendance
		WHERE session_id = $1
		ORDER BY check_in_time ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.SubjectID, &rec.CheckInTime, &rec.Status, &rec.Reason,
			&rec.Lat, &rec.Lng, &rec.AccuracyM, &rec.PhotoRef, &rec.CreatedAt, &rec.ReceivedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
