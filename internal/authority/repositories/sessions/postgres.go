// Package sessions stores the published session catalog that clients pull
// during sync.
package sessions

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

// Upsert writes the session keyed by id. Republishing an existing session
// (moved room, new QR token) overwrites the row.
func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions
			(id, group_id, course_code, title, room, start_time, end_time,
			 lat, lng, radius_m, qr_token, class_secret, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			course_code = EXCLUDED.course_code,
			title = EXCLUDED.title,
			room = EXCLUDED.room,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			radius_m = EXCLUDED.radius_m,
			qr_token = EXCLUDED.qr_token,
			class_secret = EXCLUDED.class_secret,
			created_by = EXCLUDED.created_by,
			created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.GroupID, s.CourseCode, s.Title, s.Room, s.StartTime, s.EndTime,
		s.Lat, s.Lng, s.RadiusM, s.QRToken, s.ClassSecret, s.CreatedBy, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, group_id, course_code, title, room, start_time, end_time,
		       lat, lng, radius_m, qr_token, class_secret, created_by, created_at
		FROM sessions
		WHERE id = $1
	`
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.GroupID, &s.CourseCode, &s.Title, &s.Room, &s.StartTime, &s.EndTime,
		&s.Lat, &s.Lng, &s.RadiusM, &s.QRToken, &s.ClassSecret, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Session, error) {
	query := `
		SELECT id, group_id, course_code, title, room, start_time, end_time,
		       lat, lng, radius_m, qr_token, class_secret, created_by, created_at
		FROM sessions
		ORDER BY start_time ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(
			&s.ID, &s.GroupID, &s.CourseCode, &s.Title, &s.Room, &s.StartTime, &s.EndTime,
			&s.Lat, &s.Lng, &s.RadiusM, &s.QRToken, &s.ClassSecret, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
