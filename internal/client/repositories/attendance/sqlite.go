package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
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

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.AttendanceRecord) error {
	var lat, lng, acc sql.NullFloat64
	if rec.Location != nil {
		lat = sql.NullFloat64{Float64: rec.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: rec.Location.Lng, Valid: true}
		acc = sql.NullFloat64{Float64: rec.Location.AccuracyM, Valid: true}
	}

	query := `INSERT INTO attendance
			(id, session_id, subject_id, checkin_time, lat, lng, accuracy,
			 photo_ref, status, reason, sync_status, attempts, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.SessionID, rec.SubjectID, rec.CheckInTime.UnixMilli(),
		lat, lng, acc, rec.PhotoRef, string(rec.Status), rec.Reason,
		string(rec.SyncStatus), rec.Attempts, rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SelectPendingOrFailed(ctx context.Context, limit int) ([]*models.AttendanceRecord, error) {
	query := `SELECT id, session_id, subject_id, checkin_time, lat, lng, accuracy,
			photo_ref, status, reason, sync_status, attempts, created_at
			FROM attendance
			WHERE sync_status IN ('Pending', 'Failed')
			ORDER BY created_at ASC
			LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending attendance: %w", err)
	}
	defer rows.Close()

	var result []*models.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, `UPDATE attendance SET sync_status = 'Synced', attempts = 0 WHERE id = ?`)
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, `UPDATE attendance SET sync_status = 'Failed', attempts = attempts + 1 WHERE id = ?`)
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id, query string) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
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

func (r *SQLiteRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.AttendanceRecord, error) {
	query := `SELECT id, session_id, subject_id, checkin_time, lat, lng, accuracy,
			photo_ref, status, reason, sync_status, attempts, created_at
			FROM attendance
			WHERE subject_id = ?
			ORDER BY checkin_time DESC`
	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attendance history: %w", err)
	}
	defer rows.Close()

	var result []models.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanRecord(scan func(dest ...any) error) (*models.AttendanceRecord, error) {
	var (
		rec           models.AttendanceRecord
		checkinMs     int64
		createdMs     int64
		lat, lng, acc sql.NullFloat64
		status, syncS string
	)
	err := scan(&rec.ID, &rec.SessionID, &rec.SubjectID, &checkinMs,
		&lat, &lng, &acc, &rec.PhotoRef, &status, &rec.Reason,
		&syncS, &rec.Attempts, &createdMs)
	if err != nil {
		return nil, err
	}

	rec.CheckInTime = time.UnixMilli(checkinMs).UTC()
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.Status = models.CheckInStatus(status)
	rec.SyncStatus = models.SyncStatus(syncS)
	if lat.Valid && lng.Valid {
		rec.Location = &models.LocationSample{Lat: lat.Float64, Lng: lng.Float64, AccuracyM: acc.Float64}
	}
	return &rec, nil
}
