// Package services contains the application services of the client: the
// attendance flow (check-in, leave requests) and local authentication.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/client/repositories/attendance"
	"github.com/offcampus/rollcall/internal/client/repositories/leaves"
	"github.com/offcampus/rollcall/internal/client/repositories/sessions"
	"github.com/offcampus/rollcall/internal/client/validator"
)

// SyncKicker wakes the sync scheduler because new pending work exists. The
// call must not block; the scheduler coalesces bursts.
type SyncKicker interface {
	Kick()
}

// AttendanceService orchestrates the check-in validator and the local
// store. It owns no state of its own: every call loads what it needs,
// writes exactly once, and fires exactly one sync trigger. No network call
// happens on this path.
type AttendanceService struct {
	sessions   sessions.Repository
	attendance attendance.Repository
	leaves     leaves.Repository
	kicker     SyncKicker
	now        Clock
}

func NewAttendanceService(
	sessionRepo sessions.Repository,
	attendanceRepo attendance.Repository,
	leaveRepo leaves.Repository,
	kicker SyncKicker,
	now Clock,
) *AttendanceService {
	if now == nil {
		now = SystemClock
	}
	return &AttendanceService{
		sessions:   sessionRepo,
		attendance: attendanceRepo,
		leaves:     leaveRepo,
		kicker:     kicker,
		now:        now,
	}
}

// CheckIn records one claim of presence for the session. The record is
// persisted whatever the outcome: a Rejected attempt stays in the local
// history too.
func (s *AttendanceService) CheckIn(
	ctx context.Context,
	sessionID, subjectID, token, secret string,
	loc *models.LocationSample,
	photoRef string,
) (*models.AttendanceRecord, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	res := validator.Validate(sess, token, secret, loc, now)

	rec := &models.AttendanceRecord{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		SubjectID:   subjectID,
		CheckInTime: now,
		Location:    loc,
		PhotoRef:    photoRef,
		Status:      res.Status,
		Reason:      res.Reason,
		SyncStatus:  models.SyncPending,
		CreatedAt:   now,
	}

	if err := s.attendance.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save attendance record: %w", err)
	}

	s.kicker.Kick()
	return rec, nil
}

// SubmitLeaveRequest records a claim of planned absence and queues it for
// upload.
func (s *AttendanceService) SubmitLeaveRequest(
	ctx context.Context,
	subjectID, category string,
	start, end time.Time,
	courses []string,
	remarks, documentRef string,
) (*models.LeaveRequest, error) {
	now := s.now()

	req := &models.LeaveRequest{
		ID:              uuid.NewString(),
		SubjectID:       subjectID,
		Category:        category,
		StartDate:       start,
		EndDate:         end,
		AffectedCourses: courses,
		Remarks:         remarks,
		DocumentRef:     documentRef,
		ReviewStatus:    models.ReviewPending,
		SyncStatus:      models.SyncPending,
		CreatedAt:       now,
	}

	if err := s.leaves.Insert(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save leave request: %w", err)
	}

	s.kicker.Kick()
	return req, nil
}

// DeleteLeaveRequest removes the request locally and leaves a tombstone so
// the next sync run issues an explicit remote delete. The delete intent is
// never silently dropped.
func (s *AttendanceService) DeleteLeaveRequest(ctx context.Context, id string) error {
	if err := s.leaves.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}

	s.kicker.Kick()
	return nil
}

// History returns the subject's attendance records, newest first.
func (s *AttendanceService) History(ctx context.Context, subjectID string) ([]models.AttendanceRecord, error) {
	return s.attendance.ListBySubject(ctx, subjectID)
}

// LeaveRequests returns the subject's leave requests, newest first.
func (s *AttendanceService) LeaveRequests(ctx context.Context, subjectID string) ([]models.LeaveRequest, error) {
	return s.leaves.ListBySubject(ctx, subjectID)
}

// Sessions lists known sessions ordered by start time.
func (s *AttendanceService) Sessions(ctx context.Context) ([]models.Session, error) {
	return s.sessions.List(ctx)
}
