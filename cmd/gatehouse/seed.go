// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// testUserPassword is the password shared by generated test accounts.
const testUserPassword = "123456"

type seedAccount struct {
	email    string
	password string
}

// fixtureAccounts are the well-known development accounts created by
// --fixtures.
var fixtureAccounts = []seedAccount{
	{email: "admin@test.com", password: "admin123"},
	{email: "user@test.com", password: "user123"},
	{email: "demo@test.com", password: "demo123"},
}

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	count    int
	fixtures bool
	timeout  time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert test users into the database",
		Long: `Creates numbered test accounts (test_user1@test.com and so on) with a
shared password, and optionally the well-known development fixtures.
This command is idempotent - existing accounts are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.count, "count", 5, "number of test users to create")
	cmd.Flags().BoolVar(&cfg.fixtures, "fixtures", false, "also create the admin/user/demo fixture accounts")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	if cfg.count < 0 {
		return oops.Code("SEED_INVALID_COUNT").Errorf("count must be non-negative, got %d", cfg.count)
	}

	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals.
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	db, err := store.New(ctx, conf.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	accounts, err := auth.NewService(authpg.NewUserRepository(db.Pool()), auth.NewArgon2idHasher())
	if err != nil {
		return err
	}

	var seeds []seedAccount
	for i := 1; i <= cfg.count; i++ {
		seeds = append(seeds, seedAccount{
			email:    fmt.Sprintf("test_user%d@test.com", i),
			password: testUserPassword,
		})
	}
	if cfg.fixtures {
		seeds = append(seeds, fixtureAccounts...)
	}

	created := 0
	for _, seed := range seeds {
		_, err := accounts.Register(ctx, seed.email, seed.password)
		if err != nil {
			if errors.Is(err, auth.ErrDuplicateEmail) {
				cmd.Printf("User %s already exists, skipping...\n", seed.email)
				continue
			}
			return oops.Code("SEED_FAILED").With("email", seed.email).Wrap(err)
		}
		cmd.Printf("%s created.\n", seed.email)
		created++
	}

	cmd.Printf("%d users created successfully!\n", created)
	return nil
}
