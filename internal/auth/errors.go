// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a user with the same normalized
// email already exists, whether detected by pre-check or by the database
// uniqueness constraint at commit time.
var ErrDuplicateEmail = errors.New("email already registered")
