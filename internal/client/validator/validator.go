// Package validator decides whether a presence claim is accepted, rejected,
// or accepted-but-late. It is a pure rule engine: the clock value comes in
// as a parameter and no I/O happens here, so every decision is reproducible
// in tests.
package validator

import (
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/geo"
)

// LateThreshold is the grace period after session start before an accepted
// check-in is downgraded to Late.
const LateThreshold = 15 * time.Minute

// Rejection reasons. These are user-facing and recorded verbatim on the
// attendance record.
const (
	ReasonInvalidCredential   = "invalid credential"
	ReasonOutsideWindow       = "outside check-in window"
	ReasonLocationUnavailable = "location unavailable"
	ReasonOutsideBoundary     = "outside campus boundary"
)

// Result is the immutable outcome of one validation. Reason is set iff
// Status is Rejected; Late carries no reason.
type Result struct {
	Status models.CheckInStatus
	Reason string
}

func reject(reason string) Result {
	return Result{Status: models.StatusRejected, Reason: reason}
}

// Validate runs the check-in rules in strict order, short-circuiting at the
// first failure:
//
//  1. credential: the scanned token or the entered secret must match;
//     either one alone is sufficient
//  2. time window: now must fall within [start, end]
//  3. geofence: only when the session defines one; a missing location
//     sample is itself a rejection
//  4. lateness: an accepted claim more than LateThreshold after start is
//     Late rather than Present
func Validate(sess *models.Session, token, secret string, loc *models.LocationSample, now time.Time) Result {
	qrValid := token != "" && token == sess.QRToken
	secretValid := secret != "" && secret == sess.ClassSecret
	if !qrValid && !secretValid {
		return reject(ReasonInvalidCredential)
	}

	if now.Before(sess.StartTime) || now.After(sess.EndTime) {
		return reject(ReasonOutsideWindow)
	}

	if sess.Fence != nil {
		if loc == nil {
			return reject(ReasonLocationUnavailable)
		}
		if !geo.WithinFence(loc.Lat, loc.Lng, sess.Fence.Lat, sess.Fence.Lng, sess.Fence.RadiusM) {
			return reject(ReasonOutsideBoundary)
		}
	}

	if now.After(sess.StartTime.Add(LateThreshold)) {
		return Result{Status: models.StatusLate}
	}
	return Result{Status: models.StatusPresent}
}
