// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/httpapi"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication HTTP server",
		Long: `Start the HTTP API server and the observability server.
Pending database migrations are applied before serving.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen-addr", "", "HTTP API listen address")
	cmd.Flags().String("metrics-addr", "", "metrics/health listen address")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("token-secret", "", "JWT signing secret")
	cmd.Flags().Duration("token-ttl", 0, "token lifetime (e.g. 24h)")
	cmd.Flags().String("log-format", "", "log format: json or text")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.Setup("gatehouse", version, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	if cfg.UsingDefaultSecret() {
		logger.Warn("using the built-in default signing secret; " +
			"tokens are forgeable, set token.secret before exposing this service")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close() //nolint:errcheck // migration failure takes precedence
		return err
	}
	if err := migrator.Close(); err != nil {
		return err
	}

	users := authpg.NewUserRepository(db.Pool())
	accounts, err := auth.NewServiceWithLogger(users, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(cfg.Token.Secret, cfg.Token.TTL)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Server.MetricsAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return db.Pool().Ping(pingCtx) == nil
	})
	obsErrs, err := obs.Start()
	if err != nil {
		return err
	}

	api := httpapi.NewAPI(accounts, tokens, users, obs.Metrics(), func() bool {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return db.Pool().Ping(pingCtx) == nil
	})
	apiServer := httpapi.NewServer(cfg.Server.ListenAddr, api.Router())
	apiErrs, err := apiServer.Start()
	if err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obs.Stop(stopCtx) //nolint:errcheck // startup failure takes precedence
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrs:
		if serveErr != nil {
			return oops.With("component", "api server").Wrap(serveErr)
		}
	case serveErr := <-obsErrs:
		if serveErr != nil {
			return oops.With("component", "observability server").Wrap(serveErr)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(stopCtx); err != nil {
		return err
	}
	return obs.Stop(stopCtx)
}
