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

// NewDeleteUserCmd creates the delete-user subcommand.
func NewDeleteUserCmd() *cobra.Command {
	var deactivate bool

	cmd := &cobra.Command{
		Use:   "delete-user EMAIL",
		Short: "Delete an account by email",
		Long: `Permanently delete the account with the given email.
With --deactivate the account is marked inactive instead of removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteUser(cmd, args, deactivate)
		},
	}

	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "deactivate instead of deleting")

	return cmd
}

func runDeleteUser(cmd *cobra.Command, args []string, deactivate bool) error {
	email := args[0]

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

	user, err := accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return oops.Code("USER_NOT_FOUND").
				With("email", email).
				Errorf("user %s not found", email)
		}
		return err
	}

	if deactivate {
		if err := accounts.Deactivate(ctx, user.ID); err != nil {
			return err
		}
		cmd.Printf("User %s deactivated successfully!\n", user.Email)
		return nil
	}

	if err := accounts.Remove(ctx, user.ID); err != nil {
		return err
	}
	cmd.Printf("User %s deleted successfully!\n", user.Email)
	return nil
}
