package models

import "time"

// Account is the local credential record for offline login. The raw
// password is never stored, only a salted PBKDF2 hash.
type Account struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
