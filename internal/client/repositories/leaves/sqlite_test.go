package leaves

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
CREATE TABLE leave_requests (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL,
  category TEXT NOT NULL,
  start_date INTEGER NOT NULL,
  end_date INTEGER NOT NULL,
  courses TEXT NOT NULL DEFAULT '',
  remarks TEXT NOT NULL DEFAULT '',
  document_ref TEXT NOT NULL DEFAULT '',
  review_status TEXT NOT NULL DEFAULT 'Pending',
  sync_status TEXT NOT NULL DEFAULT 'Pending',
  attempts INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);
CREATE TABLE leave_tombstones (
  id TEXT PRIMARY KEY,
  deleted_at INTEGER NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'Pending',
  attempts INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func request(id string, createdAt time.Time) *models.LeaveRequest {
	return &models.LeaveRequest{
		ID:              id,
		SubjectID:       "u1",
		Category:        "Medical Leave",
		StartDate:       createdAt,
		EndDate:         createdAt.Add(48 * time.Hour),
		AffectedCourses: []string{"CSD3156", "MAT2010"},
		Remarks:         "flu",
		ReviewStatus:    models.ReviewPending,
		SyncStatus:      models.SyncPending,
		CreatedAt:       createdAt,
	}
}

func TestInsertAndListBySubject(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, request("l1", base)))
	require.NoError(t, r.Insert(ctx, request("l2", base.Add(time.Hour))))

	got, err := r.ListBySubject(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "l2", got[0].ID)
	assert.Equal(t, []string{"CSD3156", "MAT2010"}, got[0].AffectedCourses)
	assert.Equal(t, models.ReviewPending, got[0].ReviewStatus)
}

func TestDelete_WritesTombstoneAtomically(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, request("l1", time.Now())))
	require.NoError(t, r.Delete(ctx, "l1"))

	got, err := r.ListBySubject(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)

	stones, err := r.SelectPendingTombstones(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stones, 1)
	assert.Equal(t, "l1", stones[0].ID)
	assert.Equal(t, models.SyncPending, stones[0].SyncStatus)
}

func TestDelete_MissingRowLeavesNoTombstone(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.Error(t, r.Delete(ctx, "ghost"))

	stones, err := r.SelectPendingTombstones(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, stones)
}

func TestSelectPendingOrFailed_SkipsSynced(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, request("l1", base)))

	failed := request("l2", base.Add(time.Minute))
	failed.SyncStatus = models.SyncFailed
	require.NoError(t, r.Insert(ctx, failed))

	done := request("l3", base.Add(2*time.Minute))
	done.SyncStatus = models.SyncSynced
	require.NoError(t, r.Insert(ctx, done))

	got, err := r.SelectPendingOrFailed(ctx, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "l1", got[0].ID)
	assert.Equal(t, "l2", got[1].ID)
}

func TestTombstoneLifecycle(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, request("l1", time.Now())))
	require.NoError(t, r.Delete(ctx, "l1"))

	require.NoError(t, r.MarkTombstoneFailed(ctx, "l1"))
	stones, err := r.SelectPendingTombstones(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stones, 1)
	assert.Equal(t, models.SyncFailed, stones[0].SyncStatus)
	assert.Equal(t, 1, stones[0].Attempts)

	require.NoError(t, r.ResolveTombstone(ctx, "l1"))
	stones, err = r.SelectPendingTombstones(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, stones)
}

func TestMarkSyncedAndFailed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, request("l1", time.Now())))
	require.NoError(t, r.MarkFailed(ctx, "l1"))
	require.NoError(t, r.MarkSynced(ctx, "l1"))

	var status string
	var attempts int
	require.NoError(t, db.QueryRow(`SELECT sync_status, attempts FROM leave_requests WHERE id='l1'`).Scan(&status, &attempts))
	assert.Equal(t, "Synced", status)
	assert.Equal(t, 0, attempts)
}
