// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth provides authentication primitives for Gatehouse.
//
// # Domain Types
//
// User records should be created through NewUser, which normalizes the
// email and validates required fields. Direct struct initialization
// bypasses validation and may create invalid state. Repository
// implementations receive pre-validated values from the constructors.
//
// # Services
//
// Service coordinates account operations: registration, credential
// verification, deactivation, and removal. TokenService issues and
// validates stateless signed session tokens bound to a user identity.
// Tokens carry their own expiry. There is no revocation list and no
// rotation mechanism: expiry is the only invalidation, and rotating the
// signing secret invalidates every outstanding token at once.
package auth
