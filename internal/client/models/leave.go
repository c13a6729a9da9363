package models

import "time"

// ReviewStatus is the review outcome of a leave request. Review happens on
// the authority side; locally-created requests start as Pending.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "Pending"
	ReviewApproved ReviewStatus = "Approved"
	ReviewRejected ReviewStatus = "Rejected"
)

// LeaveRequest is a claim of planned absence.
type LeaveRequest struct {
	ID        string
	SubjectID string
	Category  string
	StartDate time.Time
	EndDate   time.Time

	// AffectedCourses lists the course codes the absence touches.
	AffectedCourses []string

	Remarks string
	// DocumentRef is an opaque reference to a supporting document.
	DocumentRef string

	ReviewStatus ReviewStatus

	SyncStatus SyncStatus
	Attempts   int

	CreatedAt time.Time
}

// Tombstone marks a leave request the subject deleted locally. The row is
// gone from leave_requests immediately; the tombstone keeps the remote
// delete durable until the authority confirms it.
type Tombstone struct {
	ID         string
	DeletedAt  time.Time
	SyncStatus SyncStatus
	Attempts   int
}
