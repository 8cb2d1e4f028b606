// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package httpapi exposes the authentication service over HTTP.
//
// All error responses share one JSON shape, {"error": "..."}, and the
// outward messages are deliberately coarse: a client cannot distinguish
// an unknown email from a wrong password, or a bad signature from an
// expired token.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/observability"
)

const helloMessage = "Hello! I'm a message that came from the backend, " +
	"check the network tab on the google inspector and you will see the GET request"

// PingFunc reports whether the database is reachable.
type PingFunc func() bool

// API holds the handlers for the authentication endpoints.
type API struct {
	accounts *auth.Service
	tokens   *auth.TokenService
	users    auth.UserRepository
	metrics  *observability.Metrics
	ping     PingFunc
}

// NewAPI creates the HTTP API. metrics and ping may be nil.
func NewAPI(accounts *auth.Service, tokens *auth.TokenService, users auth.UserRepository, metrics *observability.Metrics, ping PingFunc) *API {
	return &API{
		accounts: accounts,
		tokens:   tokens,
		users:    users,
		metrics:  metrics,
		ping:     ping,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", a.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/hello", a.handleHello)
		r.Post("/hello", a.handleHello)
		r.Post("/signup", a.handleSignup)
		r.Post("/login", a.handleLogin)
		r.Get("/protected", a.handleProtected)
		r.Get("/user/profile", a.handleProfile)
		r.Post("/validate-token", a.handleValidateToken)
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	database := "connected"
	if a.ping != nil && !a.ping() {
		database = "unreachable"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": database,
	})
}

func (a *API) handleHello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": helloMessage})
}

// credentialsRequest is the body of signup and login requests.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeCredentials(r *http.Request) (*credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, false
	}
	return &req, true
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := a.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := errorStatus(err)
		a.countSignup(statusLabel(status))
		if status == http.StatusInternalServerError {
			slog.Error("signup failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		}
		writeError(w, status, message)
		return
	}

	a.countSignup("ok")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    serializeUser(user),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := a.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := errorStatus(err)
		a.countLogin(statusLabel(status))
		if status == http.StatusInternalServerError {
			slog.Error("login failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		}
		writeError(w, status, message)
		return
	}

	token, err := a.tokens.Issue(user)
	if err != nil {
		a.countLogin("error")
		slog.Error("token issuance failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Could not generate token")
		return
	}

	a.countLogin("ok")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    serializeUser(user),
	})
}

func (a *API) handleProtected(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization header is required")
		return
	}

	user, err := a.tokens.ResolveUser(r.Context(), token, a.users)
	if err != nil {
		status, message := errorStatus(err)
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Access granted to protected route",
		"user":    serializeUser(user),
	})
}

// handleProfile returns the token subject's profile. Unlike the other
// token-guarded routes it does not reject deactivated accounts, and a
// missing subject is a 404 rather than a 401.
func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization header is required")
		return
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		status, message := errorStatus(err)
		writeError(w, status, message)
		return
	}

	user, err := a.accounts.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if status, _ := errorStatus(err); status == http.StatusUnauthorized {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": serializeUser(user),
	})
}

func (a *API) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid": false,
			"error": "Token is required",
		})
		return
	}

	user, err := a.tokens.ResolveUser(r.Context(), req.Token, a.users)
	if err != nil {
		status, message := errorStatus(err)
		a.countValidation("rejected")
		writeJSON(w, status, map[string]any{
			"valid": false,
			"error": message,
		})
		return
	}

	a.countValidation("ok")
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  serializeUser(user),
	})
}

// statusLabel collapses HTTP statuses into coarse metric labels.
func statusLabel(status int) string {
	switch {
	case status == http.StatusConflict:
		return "duplicate"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status >= 400 && status < 500:
		return "invalid"
	default:
		return "error"
	}
}

func (a *API) countSignup(label string) {
	if a.metrics != nil {
		a.metrics.SignupsTotal.WithLabelValues(label).Inc()
	}
}

func (a *API) countLogin(label string) {
	if a.metrics != nil {
		a.metrics.LoginsTotal.WithLabelValues(label).Inc()
	}
}

func (a *API) countValidation(label string) {
	if a.metrics != nil {
		a.metrics.ValidationsTotal.WithLabelValues(label).Inc()
	}
}
