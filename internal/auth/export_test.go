// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "time"

// SetClock overrides the service clock for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetClock overrides the token service clock for tests.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}
