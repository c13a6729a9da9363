// Package models defines the authority-side records. The authority is the
// system of record: client uploads are upserted by id, so the same upload
// arriving twice leaves one row.
package models

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}

type RefreshToken struct {
	UserID  string
	Expires time.Time
}

// Session is a published check-in window. The owner creates sessions here
// and clients pull the catalog during sync. The geofence columns are set
// all together or not at all.
type Session struct {
	ID          string
	GroupID     string
	CourseCode  string
	Title       string
	Room        string
	StartTime   time.Time
	EndTime     time.Time
	Lat         *float64
	Lng         *float64
	RadiusM     *float64
	QRToken     string
	ClassSecret string
	CreatedBy   string
	CreatedAt   time.Time
}

// AttendanceRecord is the authoritative copy of a client check-in.
type AttendanceRecord struct {
	ID          string
	SessionID   string
	SubjectID   string
	CheckInTime time.Time
	Status      string
	Reason      string
	Lat         *float64
	Lng         *float64
	AccuracyM   *float64
	PhotoRef    string
	CreatedAt   time.Time
	ReceivedAt  time.Time
}

// LeaveRequest is the authoritative copy of a client leave request. Review
// happens here; the client only ever uploads Pending ones.
type LeaveRequest struct {
	ID              string
	SubjectID       string
	Category        string
	StartDate       time.Time
	EndDate         time.Time
	AffectedCourses []string
	Remarks         string
	DocumentRef     string
	ReviewStatus    string
	CreatedAt       time.Time
	ReceivedAt      time.Time
}
