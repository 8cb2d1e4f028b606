// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "User@Example.COM", want: "user@example.com"},
		{name: "trims whitespace", input: "  user@example.com  ", want: "user@example.com"},
		{name: "already normalized", input: "user@example.com", want: "user@example.com"},
		{name: "idempotent", input: "user@example.com", want: "user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auth.NormalizeEmail(tt.input)
			assert.Equal(t, tt.want, got)
			// Normalizing twice yields the same result.
			assert.Equal(t, got, auth.NormalizeEmail(got))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "user@example.com"},
		{name: "valid with plus tag", email: "user+tag@example.com"},
		{name: "valid subdomain", email: "user@mail.example.co.uk"},
		{name: "empty", email: "", wantErr: true},
		{name: "missing at sign", email: "userexample.com", wantErr: true},
		{name: "missing domain", email: "user@", wantErr: true},
		{name: "missing tld", email: "user@example", wantErr: true},
		{name: "spaces inside", email: "us er@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateEmail(tt.email)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "minimum length", password: "123456"},
		{name: "longer", password: "correct horse battery staple"},
		{name: "empty", password: "", wantErr: true},
		{name: "one short of minimum", password: "12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidatePassword(tt.password)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewUser(t *testing.T) {
	t.Run("starts active with matching timestamps", func(t *testing.T) {
		user, err := auth.NewUser("User@Example.COM", "hashed")
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", user.Email)
		assert.True(t, user.IsActive)
		assert.Equal(t, int64(0), user.ID)
		assert.True(t, user.CreatedAt.Equal(user.UpdatedAt))
		assert.Equal(t, user.CreatedAt.Location(), user.CreatedAt.UTC().Location())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := auth.NewUser("bogus", "hashed")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := auth.NewUser("user@example.com", "")
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_HASH")
	})
}

func TestUser_Deactivate(t *testing.T) {
	t.Run("marks inactive and bumps updated_at", func(t *testing.T) {
		user, err := auth.NewUser("user@example.com", "hashed")
		require.NoError(t, err)
		created := user.UpdatedAt

		user.Deactivate()
		assert.False(t, user.IsActive)
		assert.False(t, user.UpdatedAt.Before(created))
	})

	t.Run("idempotent on inactive user", func(t *testing.T) {
		user, err := auth.NewUser("user@example.com", "hashed")
		require.NoError(t, err)

		user.Deactivate()
		stamp := user.UpdatedAt

		user.Deactivate()
		assert.False(t, user.IsActive)
		assert.True(t, user.UpdatedAt.Equal(stamp))
	})
}
