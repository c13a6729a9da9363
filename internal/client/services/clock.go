package services

import "time"

// Clock supplies the current time. Injecting it keeps check-in decisions
// reproducible in tests; the validator itself never reads a clock.
type Clock func() time.Time

// SystemClock reads the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}
