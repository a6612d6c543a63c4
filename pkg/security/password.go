package security

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at registration time.
const MinPasswordLength = 6

// HashPassword derives a salted bcrypt hash from a raw password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash reports whether password rehashes to hash.
// bcrypt comparison is constant-time with respect to the secret.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
