// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/store"
)

// NewListUsersCmd creates the list-users subcommand.
func NewListUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List all registered accounts",
		RunE:  runListUsers,
	}
}

func runListUsers(cmd *cobra.Command, _ []string) error {
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

	users, err := accounts.List(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		cmd.Println("No users found in database.")
		return nil
	}

	cmd.Printf("Found %d users:\n", len(users))
	cmd.Println(strings.Repeat("-", 50))
	for _, user := range users {
		status := "Active"
		if !user.IsActive {
			status = "Inactive"
		}
		cmd.Printf("ID: %d | Email: %s | Status: %s | Created: %s\n",
			user.ID, user.Email, status, user.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
