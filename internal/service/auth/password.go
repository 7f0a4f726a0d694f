package auth

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasker-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes new passwords and checks login attempts against stored hashes.
type PasswordHasher interface {
	// Hash returns a bcrypt hash of password.
	Hash(password string) (string, error)

	// Compare returns nil when password matches hashedPassword and
	// ErrPasswordMismatch when it does not.
	Compare(hashedPassword, password string) error
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher using the configured cost. Costs outside
// bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cfg config.AuthConfig) *BcryptHasher {
	cost := cfg.BCryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the bcrypt work factor in use.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash implements PasswordHasher.Hash
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare implements PasswordHasher.Compare
func (h *BcryptHasher) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
