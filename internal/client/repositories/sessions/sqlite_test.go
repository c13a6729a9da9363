package sessions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/common"
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
CREATE TABLE sessions (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL,
  course_code TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  room TEXT NOT NULL DEFAULT '',
  start_time INTEGER NOT NULL,
  end_time INTEGER NOT NULL,
  fence_lat REAL,
  fence_lng REAL,
  fence_radius REAL,
  qr_token TEXT NOT NULL DEFAULT '',
  class_secret TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func sampleSession(id string) *models.Session {
	start := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	return &models.Session{
		ID:          id,
		GroupID:     "g1",
		CourseCode:  "CSD3156",
		Title:       "Software Engineering",
		Room:        "Room 4B-02",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		QRToken:     "ATTEND:" + id,
		ClassSecret: "472819",
		CreatedBy:   "prof",
		CreatedAt:   start.Add(-24 * time.Hour),
	}
}

func TestSave_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := sampleSession("s1")
	s.Fence = &models.Geofence{Lat: 1.4123, Lng: 103.9087, RadiusM: 300}
	require.NoError(t, r.Save(ctx, s))

	got, err := r.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s.Title, got.Title)
	require.NotNil(t, got.Fence)
	assert.Equal(t, 300.0, got.Fence.RadiusM)
	assert.True(t, got.StartTime.Equal(s.StartTime))

	// upsert with changed title
	s.Title = "Software Engineering II"
	require.NoError(t, r.Save(ctx, s))

	got, err = r.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Software Engineering II", got.Title)
}

func TestSave_RejectsInvalidSession(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := sampleSession("bad")
	s.EndTime = s.StartTime.Add(-time.Hour)
	require.ErrorIs(t, r.Save(ctx, s), common.ErrorValidation)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_PartialFenceIsCorrupt(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO sessions
		(id, group_id, start_time, end_time, fence_lat, created_at)
		VALUES ('broken', 'g1', 1000, 2000, 1.4123, 500)`)
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	_, err = r.GetByID(ctx, "broken")
	require.ErrorIs(t, err, common.ErrorInvalidSessionFence)
}

func TestList_OrderedByStartTime(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	late := sampleSession("late")
	late.StartTime = late.StartTime.Add(6 * time.Hour)
	late.EndTime = late.EndTime.Add(6 * time.Hour)
	require.NoError(t, r.Save(ctx, late))

	early := sampleSession("early")
	require.NoError(t, r.Save(ctx, early))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "late", got[1].ID)
	assert.Nil(t, got[0].Fence)
}
