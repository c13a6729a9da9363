// Package api defines the JSON wire types exchanged between the rollcall
// client and the authority server.
package api

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AttendanceUpload mirrors one attendance record. Uploads are keyed by ID
// and the authority upserts, so resending the same record is safe.
type AttendanceUpload struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	SubjectID   string    `json:"subject_id"`
	CheckInTime time.Time `json:"check_in_time"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	AccuracyM   *float64  `json:"accuracy_m,omitempty"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type LeaveUpload struct {
	ID              string    `json:"id"`
	SubjectID       string    `json:"subject_id"`
	Category        string    `json:"category"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	AffectedCourses []string  `json:"affected_courses,omitempty"`
	Remarks         string    `json:"remarks,omitempty"`
	DocumentRef     string    `json:"document_ref,omitempty"`
	ReviewStatus    string    `json:"review_status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Session is one scheduled check-in window published by the authority.
// Clients pull the catalog during sync. The geofence fields travel
// together or not at all.
type Session struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	CourseCode  string    `json:"course_code,omitempty"`
	Title       string    `json:"title"`
	Room        string    `json:"room,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	RadiusM     *float64  `json:"radius_m,omitempty"`
	QRToken     string    `json:"qr_token"`
	ClassSecret string    `json:"class_secret,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
