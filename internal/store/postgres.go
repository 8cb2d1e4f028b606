// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package store provides PostgreSQL connection and schema management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection retry configuration. Startup races against the database
// coming up in containerized deployments, so the initial ping retries
// with constant backoff before giving up.
const (
	pingRetryInterval = 500 * time.Millisecond
	pingMaxRetries    = 10
)

// Store owns the PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and verifies the connection, retrying the
// initial ping while the database comes up.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create connection pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(pingMaxRetries, retry.NewConstant(pingRetryInterval))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool for repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the database connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
