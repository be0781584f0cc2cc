package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashCost matches the cost used for records created by the original API.
const HashCost = 10

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(b), err
}

// CheckPasswordHash reports whether password matches hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SecretMatcher compares a stored secret with a supplied one.
type SecretMatcher interface {
	Match(stored, supplied string) bool
}

// BcryptMatcher matches against bcrypt hashes (server records).
type BcryptMatcher struct{}

func (BcryptMatcher) Match(stored, supplied string) bool {
	return CheckPasswordHash(supplied, stored)
}

// PlainMatcher compares clear text. Only the browser-side demo mirror stores
// secrets this way.
type PlainMatcher struct{}

func (PlainMatcher) Match(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
