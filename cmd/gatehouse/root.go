// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the gatehouse CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatehouse",
		Short: "Gatehouse - authentication backend",
		Long: `Gatehouse is a standalone authentication backend: a credential
store with hashed passwords and a stateless JWT token service, exposed
over an HTTP API.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewResetCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewCreateAdminCmd())
	cmd.AddCommand(NewListUsersCmd())
	cmd.AddCommand(NewDeleteUserCmd())

	return cmd
}

// loadConfig resolves the effective configuration for a subcommand.
// Without an explicit --config, the XDG config file is used when present.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = xdg.DefaultConfigFile()
	}
	return config.Load(path, cmd.Flags())
}
