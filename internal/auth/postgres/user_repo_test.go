// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

var userColumns = []string{"id", "email", "password_hash", "is_active", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newUser := func() *auth.User {
		return &auth.User{
			Email:        "user@example.com",
			PasswordHash: "hashed",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	t.Run("assigns generated id", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := newUser()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(user.Email, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		require.NoError(t, repo.Create(context.Background(), user))
		assert.Equal(t, int64(42), user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to duplicate email", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := newUser()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(user.Email, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err := repo.Create(context.Background(), user)
		errutil.AssertErrorCode(t, err, "USER_DUPLICATE_EMAIL")
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := newUser()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(user.Email, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(context.Background(), user)
		errutil.AssertErrorCode(t, err, "USER_CREATE_FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`SELECT id, email, password_hash, is_active, created_at, updated_at`).
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow(int64(42), "user@example.com", "hashed", true, now, now))

		user, err := repo.GetByID(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
		assert.Equal(t, "user@example.com", user.Email)
		assert.True(t, user.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`SELECT id, email, password_hash, is_active, created_at, updated_at`).
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows(userColumns))

		_, err := repo.GetByID(context.Background(), 99)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("case-insensitive match", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("user@example.com").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow(int64(42), "user@example.com", "hashed", true, now, now))

		user, err := repo.GetByEmail(context.Background(), "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(userColumns))

		_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Update(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &auth.User{
		ID:           42,
		Email:        "user@example.com",
		PasswordHash: "hashed",
		IsActive:     false,
		UpdatedAt:    now,
	}

	t.Run("updates existing row", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE users SET`).
			WithArgs(user.ID, user.Email, user.PasswordHash, user.IsActive, user.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.Update(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE users SET`).
			WithArgs(user.ID, user.Email, user.PasswordHash, user.IsActive, user.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(context.Background(), user)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_TouchLogin(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("bumps updated_at", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE users SET updated_at`).
			WithArgs(int64(42), at).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.TouchLogin(context.Background(), 42, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE users SET updated_at`).
			WithArgs(int64(99), at).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.TouchLogin(context.Background(), 99, at)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Delete(t *testing.T) {
	t.Run("deletes existing row", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(int64(42)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), 42))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(int64(99)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(context.Background(), 99)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_List(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns all rows in id order", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`ORDER BY id`).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow(int64(1), "a@example.com", "hash-a", true, now, now).
				AddRow(int64(2), "b@example.com", "hash-b", false, now, now))

		users, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "a@example.com", users[0].Email)
		assert.False(t, users[1].IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`ORDER BY id`).
			WillReturnRows(pgxmock.NewRows(userColumns))

		users, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`ORDER BY id`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.List(context.Background())
		errutil.AssertErrorCode(t, err, "USER_LIST_FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
