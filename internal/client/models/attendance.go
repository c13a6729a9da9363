package models

import "time"

// CheckInStatus is the outcome of a check-in attempt. It is set exactly once
// when the record is created and never changes afterward.
type CheckInStatus string

const (
	StatusPresent  CheckInStatus = "Present"
	StatusLate     CheckInStatus = "Late"
	StatusRejected CheckInStatus = "Rejected"
)

// SyncStatus tracks whether a locally-created record has reached the
// authority. Failed is not terminal: the record re-enters the eligible set
// on the next sync run.
type SyncStatus string

const (
	SyncPending SyncStatus = "Pending"
	SyncSynced  SyncStatus = "Synced"
	SyncFailed  SyncStatus = "Failed"
)

// LocationSample is one GPS fix taken at check-in time.
type LocationSample struct {
	Lat       float64
	Lng       float64
	AccuracyM float64
}

// AttendanceRecord is one claim of presence. The ID doubles as the
// idempotency key for uploads, so retries are safe. Everything except
// SyncStatus and Attempts is immutable after creation; Rejected attempts are
// stored too, so the subject keeps an auditable history.
type AttendanceRecord struct {
	ID          string
	SessionID   string
	SubjectID   string
	CheckInTime time.Time

	// Location is nil when no GPS sample was available at check-in.
	Location *LocationSample

	// PhotoRef is an opaque reference to a captured photo. The core never
	// interprets it.
	PhotoRef string

	Status CheckInStatus
	// Reason is set iff Status is Rejected.
	Reason string

	SyncStatus SyncStatus
	// Attempts counts consecutive failed uploads; it resets to zero only by
	// a successful sync and feeds the stuck-record report.
	Attempts int

	CreatedAt time.Time
}
