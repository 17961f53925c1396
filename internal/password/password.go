// Package password wraps bcrypt hashing for account passwords and
// one-time codes.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost matches bcrypt's default work factor. Hashing takes tens of
// milliseconds, which doubles as a brute-force throttle.
const Cost = 10

func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
