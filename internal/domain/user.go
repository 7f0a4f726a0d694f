package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Length limits for user fields.
const (
	EmailMaxLength    = 255
	PasswordMinLength = 8
	// PasswordMaxLength is bounded by bcrypt, which ignores bytes past 72.
	PasswordMaxLength = 72
)

var fieldValidator = validator.New()

// Role is the closed set of roles a user can hold.
type Role string

const (
	// RoleOwner can see and manage every task, user and notification sweep.
	RoleOwner Role = "owner"
	// RoleMember can only work with tasks they own.
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleMember:
		return true
	}
	return false
}

// ParseRole converts a case-insensitive string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", NewValidationError("role", "must be one of owner, member", ErrInvalidRole)
	}
	return r, nil
}

// User is an account that can authenticate and act on tasks.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser builds an active user from an already hashed password.
func NewUser(email, hashedPassword string, role Role) (*User, error) {
	u := &User{
		ID:             uuid.New(),
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
		Role:           role,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the persisted fields of a user.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "hashed password cannot be empty", ErrInvalidPassword)
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "must be one of owner, member", ErrInvalidRole)
	}
	return nil
}

// IsOwner reports whether the user holds the owner role.
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks format and length of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "cannot be empty", ErrInvalidEmail)
	}
	if len(email) > EmailMaxLength {
		return NewValidationError("email", "too long", ErrInvalidEmail)
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		return NewValidationError("email", "invalid format", ErrInvalidEmail)
	}
	return nil
}

// ValidatePassword checks a plaintext password before it is hashed.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength {
		return NewValidationError("password", "must be at least 8 characters long", ErrInvalidPassword)
	}
	if len(password) > PasswordMaxLength {
		return NewValidationError("password", "must be at most 72 bytes long", ErrInvalidPassword)
	}
	return nil
}
