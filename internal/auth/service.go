// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service provides account operations over a user repository.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("logger is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Register creates a new account from an email and plaintext password.
// The email is normalized before any check; the plaintext is never stored.
// A duplicate normalized email fails with AUTH_DUPLICATE_EMAIL whether it
// is caught by the pre-check or by the uniqueness constraint at commit
// time: the pre-check-then-write pattern has an inherent race window and
// both outcomes collapse into the same failure.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	// Pre-check for an existing record, active or not.
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, oops.Code("AUTH_DUPLICATE_EMAIL").
			With("email", email).
			Wrap(ErrDuplicateEmail)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check existing email").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost the race against a concurrent signup.
			return nil, oops.Code("AUTH_DUPLICATE_EMAIL").
				With("email", email).
				Wrap(ErrDuplicateEmail)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate verifies an email/password pair and returns the user.
// Unknown email and wrong password produce the same
// AUTH_INVALID_CREDENTIALS failure, and password verification runs even
// when the user does not exist so the two cases cannot be told apart by
// timing. Deactivated accounts fail with AUTH_ACCOUNT_INACTIVE.
// On success the user's updated_at is refreshed (best effort).
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	user, lookupErr := s.users.GetByEmail(ctx, email)

	var targetHash string
	var userExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Use dummy hash - still perform verification to maintain constant time
			targetHash = dummyPasswordHash
			userExists = false
		} else {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	// Check active state AFTER password verification to maintain constant time.
	if !user.IsActive {
		return nil, oops.Code("AUTH_ACCOUNT_INACTIVE").
			With("user_id", user.ID).
			Errorf("account is deactivated")
	}

	// Record the login by bumping updated_at. Login succeeds even if the
	// touch fails.
	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	} else {
		user.UpdatedAt = now
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_NOT_FOUND").
				With("user_id", id).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, normalizing it first.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_NOT_FOUND").
				With("email", NormalizeEmail(email)).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// Deactivate marks an account inactive. Deactivating an already-inactive
// account succeeds and leaves state unchanged.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	user.Deactivate()
	if err := s.users.Update(ctx, user); err != nil {
		return oops.Code("AUTH_DEACTIVATE_FAILED").
			With("user_id", id).
			Wrap(err)
	}

	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

// List returns all accounts ordered by ID.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "list users").
			Wrap(err)
	}
	return users, nil
}

// Remove permanently deletes an account.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_NOT_FOUND").
				With("user_id", id).
				Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_DELETE_FAILED").
			With("user_id", id).
			Wrap(err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}
