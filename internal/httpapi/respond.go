// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// userPayload is the outward JSON shape of an account. Password hashes
// never leave the service.
type userPayload struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func serializeUser(u *auth.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps internal error codes to the outward HTTP status and
// message. Unknown email and wrong password deliberately collapse into
// the same 401 response; anything unmapped is reported as a 500 without
// leaking internals.
func errorStatus(err error) (int, string) {
	var oopsErr oops.OopsError
	code := ""
	if errors.As(err, &oopsErr) {
		code, _ = oopsErr.Code().(string)
	}

	switch code {
	case "AUTH_INVALID_EMAIL":
		return http.StatusBadRequest, "Invalid email format"
	case "AUTH_INVALID_PASSWORD":
		return http.StatusBadRequest, "Password must be at least 6 characters long"
	case "AUTH_DUPLICATE_EMAIL":
		return http.StatusConflict, "User with this email already exists"
	case "AUTH_INVALID_CREDENTIALS":
		return http.StatusUnauthorized, "Invalid email or password"
	case "AUTH_ACCOUNT_INACTIVE":
		return http.StatusUnauthorized, "Account is deactivated"
	case "AUTH_NOT_FOUND":
		return http.StatusUnauthorized, "User not found or inactive"
	case "TOKEN_EXPIRED", "TOKEN_MALFORMED":
		return http.StatusUnauthorized, "Invalid or expired token"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
