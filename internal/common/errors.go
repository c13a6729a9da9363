// Package common defines shared constants and sentinel errors used across
// the client and authority layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors.
	ErrorInvalidCredentials  = errors.New("invalid username or password")
	ErrorUsernameTaken       = errors.New("username already exists")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrorValidation          = errors.New("validation error")
	ErrorInvalidSessionFence = errors.New("session geofence must set lat, lng and radius together")
)
