// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	BackendSQL    = "sql"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Port             int           `env:"PORT" envDefault:"3318"`
	StoreBackend     string        `env:"STORE_BACKEND" envDefault:"sql"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	DatabaseType     string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	RedisURL         string        `env:"REDIS_URL"`
	AdminKeySalt     string        `env:"ADMIN_KEY_SALT"`
	Study            string        `env:"STUDY" envDefault:"priors"`
	AllocateSlots    bool          `env:"ALLOCATE_SLOTS" envDefault:"true"`
	MaxClaimAttempts int           `env:"MAX_CLAIM_ATTEMPTS" envDefault:"5"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	TrialsFile       string        `env:"TRIALS_FILE"`
	TerminalPage     string        `env:"TERMINAL_PAGE" envDefault:"debrief.html"`
	TraceOutput      string        `env:"TRACE_OUTPUT"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseFlags reads environment variables, then lets CLI flags override them
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("priors", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Store backend (sql, redis or memory)")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", cfg.AdminKeySalt, "Admin key salt (prefer env)")

	// Survey behaviour
	fs.StringVar(&cfg.Study, "study", cfg.Study, "Study name used for admin keys")
	fs.BoolVar(&cfg.AllocateSlots, "allocate", cfg.AllocateSlots, "Claim a participant slot per session")
	fs.IntVar(&cfg.MaxClaimAttempts, "claim-attempts", cfg.MaxClaimAttempts, "Slot claims tried before giving up")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "Timeout for store reads")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Evict sessions idle this long (0 disables)")
	fs.StringVar(&cfg.TrialsFile, "trials", cfg.TrialsFile, "YAML fallback trial set")
	fs.StringVar(&cfg.TerminalPage, "terminal-page", cfg.TerminalPage, "Page to redirect to on completion")
	fs.StringVar(&cfg.TraceOutput, "trace", cfg.TraceOutput, "Trace output: stdout or a file path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.StoreBackend {
	case BackendSQL:
		if cfg.DatabaseURL == "" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
			return fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return errors.New("redis URL required (use -redis or REDIS_URL env)")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		return errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.MaxClaimAttempts < 1 {
		return errors.New("claim attempts must be at least 1")
	}
	return nil
}
