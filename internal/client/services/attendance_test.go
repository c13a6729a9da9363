package services

import (
	"context"
	"testing"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/client/store"
	"github.com/offcampus/rollcall/internal/client/validator"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKicker struct {
	kicks int
}

func (k *fakeKicker) Kick() { k.kicks++ }

var start = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func setup(t *testing.T, now time.Time) (*AttendanceService, *store.Store, *fakeKicker) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sess := &models.Session{
		ID:          "s1",
		GroupID:     "g1",
		CourseCode:  "CSD3156",
		Title:       "Software Engineering",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		QRToken:     "ATTEND:s1",
		ClassSecret: "472819",
		CreatedAt:   start.Add(-time.Hour),
	}
	require.NoError(t, st.Sessions.Save(ctx, sess))

	k := &fakeKicker{}
	svc := NewAttendanceService(st.Sessions, st.Attendance, st.Leaves, k, fixedClock(now))
	return svc, st, k
}

func TestCheckIn_PresentPersistedAndKicked(t *testing.T) {
	svc, st, k := setup(t, start.Add(5*time.Minute))
	ctx := context.Background()

	rec, err := svc.CheckIn(ctx, "s1", "u1", "ATTEND:s1", "", nil, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPresent, rec.Status)
	assert.Empty(t, rec.Reason)
	assert.Equal(t, models.SyncPending, rec.SyncStatus)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 1, k.kicks)

	// exactly one row written, and it is pending upload
	pending, err := st.Attendance.SelectPendingOrFailed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, rec.ID, pending[0].ID)
}

func TestCheckIn_LateAfterGrace(t *testing.T) {
	svc, _, _ := setup(t, start.Add(20*time.Minute))

	rec, err := svc.CheckIn(context.Background(), "s1", "u1", "", "472819", nil, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, rec.Status)
}

func TestCheckIn_RejectedStillPersisted(t *testing.T) {
	svc, st, k := setup(t, start.Add(5*time.Minute))
	ctx := context.Background()

	rec, err := svc.CheckIn(ctx, "s1", "u1", "WRONG", "000000", nil, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, rec.Status)
	assert.Equal(t, validator.ReasonInvalidCredential, rec.Reason)
	assert.Equal(t, 1, k.kicks)

	history, err := st.Attendance.ListBySubject(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusRejected, history[0].Status)
}

func TestCheckIn_UnknownSession(t *testing.T) {
	svc, _, k := setup(t, start)

	_, err := svc.CheckIn(context.Background(), "ghost", "u1", "tok", "", nil, "")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Zero(t, k.kicks)
}

func TestCheckIn_FreshIDPerAttempt(t *testing.T) {
	svc, _, _ := setup(t, start.Add(5*time.Minute))
	ctx := context.Background()

	a, err := svc.CheckIn(ctx, "s1", "u1", "ATTEND:s1", "", nil, "")
	require.NoError(t, err)
	b, err := svc.CheckIn(ctx, "s1", "u1", "ATTEND:s1", "", nil, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSubmitLeaveRequest(t *testing.T) {
	svc, st, k := setup(t, start)
	ctx := context.Background()

	req, err := svc.SubmitLeaveRequest(ctx, "u1", "Medical Leave",
		start, start.Add(48*time.Hour), []string{"CSD3156"}, "flu", "docs/mc.pdf")
	require.NoError(t, err)

	assert.Equal(t, models.ReviewPending, req.ReviewStatus)
	assert.Equal(t, models.SyncPending, req.SyncStatus)
	assert.Equal(t, 1, k.kicks)

	pending, err := st.Leaves.SelectPendingOrFailed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)
}

func TestDeleteLeaveRequest_LeavesTombstone(t *testing.T) {
	svc, st, k := setup(t, start)
	ctx := context.Background()

	req, err := svc.SubmitLeaveRequest(ctx, "u1", "Personal Leave",
		start, start.Add(24*time.Hour), nil, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLeaveRequest(ctx, req.ID))
	assert.Equal(t, 2, k.kicks)

	remaining, err := svc.LeaveRequests(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	stones, err := st.Leaves.SelectPendingTombstones(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stones, 1)
	assert.Equal(t, req.ID, stones[0].ID)
}
