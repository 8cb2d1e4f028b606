// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// DefaultSigningSecret is the fallback JWT signing secret used when no
// secret is configured. It is intentionally weak and every token signed
// with it is forgeable; a warning is logged at startup when it is in use.
const DefaultSigningSecret = "default-secret-key"

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Token    TokenConfig    `koanf:"token"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	ListenAddr  string `koanf:"listen_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// TokenConfig configures session token issuance.
type TokenConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Format string `koanf:"format"`
}

// flagKeys maps command-line flag names to configuration keys. Flags
// without a mapping are ignored by the config loader.
var flagKeys = map[string]string{
	"listen-addr":  "server.listen_addr",
	"metrics-addr": "server.metrics_addr",
	"database-url": "database.url",
	"token-secret": "token.secret",
	"token-ttl":    "token.ttl",
	"log-format":   "log.format",
}

func defaults() map[string]any {
	return map[string]any{
		"server.listen_addr":  ":8080",
		"server.metrics_addr": ":9090",
		"database.url":        "postgres://localhost:5432/gatehouse?sslmode=disable",
		"token.secret":        DefaultSigningSecret,
		"token.ttl":           24 * time.Hour,
		"log.format":          "json",
	}
}

// Load builds the configuration. The path may be empty, in which case
// only defaults and flags apply; a missing file at an explicit path is
// an error. Flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, oops.Code("CONFIG_FILE_NOT_FOUND").
				With("path", path).
				Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	// DATABASE_URL is honored for parity with container tooling that
	// injects it directly.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if err := k.Load(confmap.Provider(map[string]any{"database.url": dbURL}, "."), nil); err != nil {
			return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.listen_addr cannot be empty")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url cannot be empty")
	}
	if c.Token.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token.secret cannot be empty")
	}
	if c.Token.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token.ttl must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// UsingDefaultSecret reports whether the fallback signing secret is in
// use. Callers should log a prominent warning when it is.
func (c *Config) UsingDefaultSecret() bool {
	return c.Token.Secret == DefaultSigningSecret
}
