// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/store"
)

// NewCreateAdminCmd creates the create-admin subcommand.
func NewCreateAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin EMAIL PASSWORD",
		Short: "Create an administrative account",
		Args:  cobra.ExactArgs(2),
		RunE:  runCreateAdmin,
	}
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	email, password := args[0], args[1]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	db, err := store.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	accounts, err := auth.NewService(authpg.NewUserRepository(db.Pool()), auth.NewArgon2idHasher())
	if err != nil {
		return err
	}

	user, err := accounts.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			return oops.Code("ADMIN_EXISTS").
				With("email", email).
				Errorf("user %s already exists", email)
		}
		return err
	}

	cmd.Printf("Admin user %s created successfully (id %d)\n", user.Email, user.ID)
	return nil
}
