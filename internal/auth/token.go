// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL is how long issued tokens remain valid.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the payload of a session token: the subject's identity plus
// the standard issued-at and expiry instants. The email is a redundant
// copy carried for display without a user lookup.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates stateless HS256-signed session tokens.
// The signing secret is injected once at construction and is immutable for
// the process lifetime; rotating it invalidates all previously issued
// tokens instantly. There is no revocation mechanism; expiry is the only
// invalidation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given signing secret and
// token lifetime. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, oops.Code("TOKEN_EMPTY_SECRET").Errorf("signing secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the user with expiry now + ttl.
// Callers must not issue tokens for inactive users.
func (s *TokenService) Issue(user *User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", oops.Code("TOKEN_INVALID_SUBJECT").Errorf("user with assigned ID is required")
	}

	iat := s.now().UTC()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Validate decodes a token string and verifies its signature and expiry.
// A token is valid only strictly before its expiry instant: validation at
// exactly expires-at fails with TOKEN_EXPIRED. Undecodable strings, bad
// signatures, and non-HMAC signing methods fail with TOKEN_MALFORMED.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, oops.Code("TOKEN_MALFORMED").Errorf("token cannot be empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(err)
		}
		return nil, oops.Code("TOKEN_MALFORMED").Wrap(err)
	}
	if !token.Valid {
		return nil, oops.Code("TOKEN_MALFORMED").Errorf("invalid token")
	}

	return claims, nil
}

// ResolveUser validates a token and resolves its subject through the user
// repository. A structurally valid token fails with AUTH_NOT_FOUND when
// the subject no longer exists and AUTH_ACCOUNT_INACTIVE when the account
// has been deactivated.
func (s *TokenService) ResolveUser(ctx context.Context, tokenString string, users UserRepository) (*User, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_NOT_FOUND").
				With("user_id", claims.UserID).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "resolve token subject").
			Wrap(err)
	}

	if !user.IsActive {
		return nil, oops.Code("AUTH_ACCOUNT_INACTIVE").
			With("user_id", user.ID).
			Errorf("account is deactivated")
	}

	return user, nil
}
