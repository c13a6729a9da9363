package attendance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE attendance (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  checkin_time INTEGER NOT NULL,
  lat REAL,
  lng REAL,
  accuracy REAL,
  photo_ref TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  sync_status TEXT NOT NULL DEFAULT 'Pending',
  attempts INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func record(id string, createdAt time.Time) *models.AttendanceRecord {
	return &models.AttendanceRecord{
		ID:          id,
		SessionID:   "s1",
		SubjectID:   "u1",
		CheckInTime: createdAt,
		Status:      models.StatusPresent,
		SyncStatus:  models.SyncPending,
		CreatedAt:   createdAt,
	}
}

func TestInsertAndListBySubject(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 8, 5, 0, 0, time.UTC)

	rec := record("a1", base)
	rec.Location = &models.LocationSample{Lat: 1.4123, Lng: 103.9087, AccuracyM: 12.5}
	rec.PhotoRef = "photos/a1.jpg"
	require.NoError(t, r.Insert(ctx, rec))

	rejected := record("a2", base.Add(time.Minute))
	rejected.Status = models.StatusRejected
	rejected.Reason = "invalid credential"
	require.NoError(t, r.Insert(ctx, rejected))

	got, err := r.ListBySubject(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// newest check-in first
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, models.StatusRejected, got[0].Status)
	assert.Equal(t, "invalid credential", got[0].Reason)

	assert.Equal(t, "a1", got[1].ID)
	require.NotNil(t, got[1].Location)
	assert.Equal(t, 12.5, got[1].Location.AccuracyM)
	assert.Equal(t, "photos/a1.jpg", got[1].PhotoRef)
}

func TestInsert_DuplicateIDFails(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := record("dup", time.Now())
	require.NoError(t, r.Insert(ctx, rec))
	require.Error(t, r.Insert(ctx, rec))
}

func TestSelectPendingOrFailed_OrderAndLimit(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	oldest := record("old", base)
	oldest.SyncStatus = models.SyncFailed
	require.NoError(t, r.Insert(ctx, oldest))

	mid := record("mid", base.Add(time.Minute))
	require.NoError(t, r.Insert(ctx, mid))

	synced := record("done", base.Add(2*time.Minute))
	synced.SyncStatus = models.SyncSynced
	require.NoError(t, r.Insert(ctx, synced))

	newest := record("new", base.Add(3*time.Minute))
	require.NoError(t, r.Insert(ctx, newest))

	got, err := r.SelectPendingOrFailed(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "old", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}

func TestMarkSyncedAndFailed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := record("a1", time.Now())
	require.NoError(t, r.Insert(ctx, rec))

	require.NoError(t, r.MarkFailed(ctx, "a1"))
	require.NoError(t, r.MarkFailed(ctx, "a1"))

	var status string
	var attempts int
	require.NoError(t, db.QueryRow(`SELECT sync_status, attempts FROM attendance WHERE id='a1'`).Scan(&status, &attempts))
	assert.Equal(t, "Failed", status)
	assert.Equal(t, 2, attempts)

	require.NoError(t, r.MarkSynced(ctx, "a1"))
	require.NoError(t, db.QueryRow(`SELECT sync_status, attempts FROM attendance WHERE id='a1'`).Scan(&status, &attempts))
	assert.Equal(t, "Synced", status)
	assert.Equal(t, 0, attempts)

	// unknown id is an error, not a silent no-op
	require.Error(t, r.MarkSynced(ctx, "nope"))
}
