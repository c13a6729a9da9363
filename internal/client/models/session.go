// Package models defines client-side data models persisted in the local
// store and synced with the authority.
package models

import (
	"time"

	"github.com/offcampus/rollcall/internal/common"
)

// Geofence is a circular boundary a location sample must fall within.
type Geofence struct {
	Lat     float64
	Lng     float64
	RadiusM float64
}

// Session is a scheduled window during which check-ins are valid. Sessions
// are created by the owner and are immutable for their active life.
type Session struct {
	ID         string
	GroupID    string
	CourseCode string
	Title      string
	Room       string
	StartTime  time.Time
	EndTime    time.Time

	// Fence is nil when the session has no location requirement.
	Fence *Geofence

	// QRToken is the payload encoded in the session QR code. ClassSecret is
	// the short numeric code the owner can announce instead. Either one
	// unlocks check-in.
	QRToken     string
	ClassSecret string

	CreatedBy string
	CreatedAt time.Time
}

// Validate checks structural invariants before a session is stored.
// A fence must carry all three of lat, lng and radius or be absent entirely;
// partial fences from a sync payload are a data bug, not a user error.
func (s *Session) Validate() error {
	if s.ID == "" || s.StartTime.IsZero() || s.EndTime.IsZero() {
		return common.ErrorValidation
	}
	if s.EndTime.Before(s.StartTime) {
		return common.ErrorValidation
	}
	if s.Fence != nil && s.Fence.RadiusM <= 0 {
		return common.ErrorInvalidSessionFence
	}
	return nil
}
