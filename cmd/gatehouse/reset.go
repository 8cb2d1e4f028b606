// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/store"
)

// NewResetCmd creates the reset subcommand.
func NewResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the database schema",
		Long: `Roll back all migrations and reapply them, leaving an empty schema.
This destroys all data and requires --force.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, args, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm the destructive reset")

	return cmd
}

func runReset(cmd *cobra.Command, _ []string, force bool) error {
	if !force {
		return oops.Code("RESET_NOT_CONFIRMED").
			Errorf("reset destroys all data; re-run with --force to confirm")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }() //nolint:errcheck // reset result takes precedence

	cmd.Println("Resetting database...")
	if err := migrator.Reset(); err != nil {
		return err
	}

	cmd.Println("Database reset completed")
	return nil
}
