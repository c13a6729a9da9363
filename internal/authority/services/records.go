package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/offcampus/rollcall/internal/authority/models"
	"github.com/offcampus/rollcall/internal/authority/repositories/repomanager"
	"github.com/offcampus/rollcall/internal/common"
)

// RecordService receives client uploads. All writes are idempotent keyed by
// record id; clients deliver at-least-once.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m}
}

// PublishSession stores (or re-publishes) a session in the catalog. The
// geofence is all-or-nothing: a partial one is a malformed publish, not a
// session without a location requirement.
func (s *RecordService) PublishSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" || sess.GroupID == "" || sess.Title == "" || sess.QRToken == "" {
		return common.ErrorValidation
	}
	if sess.StartTime.IsZero() || sess.EndTime.IsZero() || sess.EndTime.Before(sess.StartTime) {
		return common.ErrorValidation
	}
	fenceFields := 0
	for _, f := range []*float64{sess.Lat, sess.Lng, sess.RadiusM} {
		if f != nil {
			fenceFields++
		}
	}
	if fenceFields != 0 && fenceFields != 3 {
		return common.ErrorValidation
	}
	if sess.RadiusM != nil && *sess.RadiusM <= 0 {
		return common.ErrorValidation
	}
	if err := s.repomanager.Sessions(s.db).Upsert(ctx, sess); err != nil {
		return fmt.Errorf("error storing session: %w", err)
	}
	return nil
}

// ListSessions returns the full catalog, soonest first.
func (s *RecordService) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.repomanager.Sessions(s.db).List(ctx)
}

func (s *RecordService) UpsertAttendance(ctx context.Context, rec *models.AttendanceRecord) error {
	if rec.ID == "" || rec.SessionID == "" || rec.SubjectID == "" {
		return common.ErrorValidation
	}
	if rec.Status == "" || rec.CheckInTime.IsZero() {
		return common.ErrorValidation
	}
	if err := s.repomanager.Attendance(s.db).Upsert(ctx, rec); err != nil {
		return fmt.Errorf("error storing attendance record: %w", err)
	}
	return nil
}

func (s *RecordService) UpsertLeave(ctx context.Context, req *models.LeaveRequest) error {
	if req.ID == "" || req.SubjectID == "" || req.Category == "" {
		return common.ErrorValidation
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
		return common.ErrorValidation
	}
	if req.ReviewStatus == "" {
		req.ReviewStatus = "Pending"
	}
	if err := s.repomanager.Leaves(s.db).Upsert(ctx, req); err != nil {
		return fmt.Errorf("error storing leave request: %w", err)
	}
	return nil
}

// DeleteLeave removes the leave request. An unknown id is fine: the client
// is propagating a local delete and the end state is the same.
func (s *RecordService) DeleteLeave(ctx context.Context, id string) error {
	if id == "" {
		return common.ErrorValidation
	}
	if err := s.repomanager.Leaves(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting leave request: %w", err)
	}
	return nil
}

// ReviewLeave records a review decision for a stored leave request.
func (s *RecordService) ReviewLeave(ctx context.Context, id, status string) error {
	switch status {
	case "Approved", "Rejected", "Pending":
	default:
		return common.ErrorValidation
	}
	return s.repomanager.Leaves(s.db).SetReviewStatus(ctx, id, status)
}
