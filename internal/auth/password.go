// Package auth provides password hashing, token issuance and the request
// middleware that turns a valid token into a request-scoped identity.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Roughly 250ms per hash on
// current server hardware.
const defaultCost = 12

// PasswordService hashes and verifies passwords with bcrypt. It is a
// struct rather than free functions so the cost can be injected: tests
// use the bcrypt minimum to avoid paying 250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom cost.
// Pass bcrypt.MinCost in tests; never use a reduced cost in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password. The output embeds the salt and cost,
// so it can be stored as-is and verified without extra columns.
//
// Plaintexts over 72 bytes are rejected: bcrypt silently truncates at
// that length, which would make longer passwords partially ignored.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a stored hash. Returns nil
// on match. The comparison is constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
