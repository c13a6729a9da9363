// Package cryptox holds the password-hashing primitives for local accounts.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes in a fresh salt.
	SaltSize = 16

	// Iterations and keyLength follow the PBKDF2-HMAC-SHA256 parameters the
	// mobile client shipped with, so hashes stay comparable across devices.
	Iterations = 120_000
	keyLength  = 32
)

// HashPassword derives a 256-bit PBKDF2-HMAC-SHA256 key from the password
// and salt. The raw password is never stored.
func HashPassword(password []byte, salt []byte) []byte {
	return pbkdf2.Key(password, salt, Iterations, keyLength, sha256.New)
}

// VerifyPassword recomputes the hash for the candidate password and compares
// it against the stored hash in constant time.
func VerifyPassword(password []byte, salt []byte, expected []byte) bool {
	actual := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for removing raw passwords from memory after use.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
