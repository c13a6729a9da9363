package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/offcampus/rollcall/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	var lat, lng, radius sql.NullFloat64
	if s.Fence != nil {
		lat = sql.NullFloat64{Float64: s.Fence.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: s.Fence.Lng, Valid: true}
		radius = sql.NullFloat64{Float64: s.Fence.RadiusM, Valid: true}
	}

	query := `INSERT INTO sessions
			(id, group_id, course_code, title, room, start_time, end_time,
			 fence_lat, fence_lng, fence_radius, qr_token, class_secret, created_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				group_id = excluded.group_id,
				course_code = excluded.course_code,
				title = excluded.title,
				room = excluded.room,
				start_time = excluded.start_time,
				end_time = excluded.end_time,
				fence_lat = excluded.fence_lat,
				fence_lng = excluded.fence_lng,
				fence_radius = excluded.fence_radius,
				qr_token = excluded.qr_token,
				class_secret = excluded.class_secret,
				created_by = excluded.created_by
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.GroupID, s.CourseCode, s.Title, s.Room,
		s.StartTime.UnixMilli(), s.EndTime.UnixMilli(),
		lat, lng, radius, s.QRToken, s.ClassSecret, s.CreatedBy, s.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT id, group_id, course_code, title, room, start_time, end_time,
			fence_lat, fence_lng, fence_radius, qr_token, class_secret, created_by, created_at
			FROM sessions WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Session, error) {
	query := `SELECT id, group_id, course_code, title, room, start_time, end_time,
			fence_lat, fence_lng, fence_radius, qr_token, class_secret, created_by, created_at
			FROM sessions ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanSession maps one row to a Session. A fence stored with only some of
// its three columns set violates the all-or-nothing invariant and is
// reported as corrupt data rather than silently half-applied.
func scanSession(scan func(dest ...any) error) (*models.Session, error) {
	var (
		s                scanned
		lat, lng, radius sql.NullFloat64
	)
	err := scan(&s.id, &s.groupID, &s.courseCode, &s.title, &s.room,
		&s.startMs, &s.endMs, &lat, &lng, &radius,
		&s.qrToken, &s.classSecret, &s.createdBy, &s.createdMs)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:          s.id,
		GroupID:     s.groupID,
		CourseCode:  s.courseCode,
		Title:       s.title,
		Room:        s.room,
		StartTime:   time.UnixMilli(s.startMs).UTC(),
		EndTime:     time.UnixMilli(s.endMs).UTC(),
		QRToken:     s.qrToken,
		ClassSecret: s.classSecret,
		CreatedBy:   s.createdBy,
		CreatedAt:   time.UnixMilli(s.createdMs).UTC(),
	}

	switch {
	case lat.Valid && lng.Valid && radius.Valid:
		sess.Fence = &models.Geofence{Lat: lat.Float64, Lng: lng.Float64, RadiusM: radius.Float64}
	case lat.Valid || lng.Valid || radius.Valid:
		return nil, common.ErrorInvalidSessionFence
	}

	return sess, nil
}

type scanned struct {
	id, groupID, courseCode, title, room string
	startMs, endMs                       int64
	qrToken, classSecret, createdBy      string
	createdMs                            int64
}
