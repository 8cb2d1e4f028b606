// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum accepted plaintext password length.
const MinPasswordLength = 6

// emailRegex matches addresses of the form local@domain.tld. It is a
// coarse format check, not a full RFC 5322 validator.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email address. The normalized
// form is the uniqueness key; it must be applied identically at creation
// and at every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that an email address is well-formed.
// The address is expected to be normalized already.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("email", email).
			Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks plaintext password policy before hashing.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code("AUTH_INVALID_PASSWORD").Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// NewUser creates a validated User with a normalized email and an already
// computed password hash. The record starts active with
// created_at == updated_at. Direct struct initialization bypasses
// validation and may create invalid state.
func NewUser(email, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_EMPTY_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Deactivate marks the user inactive. Deactivating an already-inactive
// user is a no-op and leaves UpdatedAt unchanged.
func (u *User) Deactivate() {
	if !u.IsActive {
		return
	}
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
}

// UserRepository manages user persistence. Implementations must enforce
// email uniqueness and surface constraint violations as ErrDuplicateEmail.
type UserRepository interface {
	// Create stores a new user and assigns its ID.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by normalized email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error

	// TouchLogin sets updated_at for a user, recording a successful login.
	TouchLogin(ctx context.Context, id int64, at time.Time) error

	// Delete removes a user permanently.
	Delete(ctx context.Context, id int64) error

	// List returns all users ordered by ID.
	List(ctx context.Context) ([]*User, error)
}
