// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/priors/allocator"
	"github.com/danielhkuo/priors/cliparse"
	"github.com/danielhkuo/priors/db"
	"github.com/danielhkuo/priors/middleware"
	"github.com/danielhkuo/priors/router"
	"github.com/danielhkuo/priors/session"
	"github.com/danielhkuo/priors/stimuli"
	"github.com/danielhkuo/priors/store"
	"github.com/danielhkuo/priors/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config) error {
	if err := tracing.Init("priors", cfg.TraceOutput); err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	fallback := stimuli.Default()
	if cfg.TrialsFile != "" {
		fallback, err = stimuli.Load(cfg.TrialsFile)
		if err != nil {
			return err
		}
	}

	alloc := allocator.New(kv,
		allocator.WithMaxClaimAttempts(cfg.MaxClaimAttempts),
		allocator.WithReadTimeout(cfg.ReadTimeout),
	)
	sessions := session.NewManager(kv, alloc, session.Config{
		AllocateSlots: cfg.AllocateSlots,
		Fallback:      fallback,
		IPSalt:        cfg.AdminKeySalt,
		SessionTTL:    cfg.SessionTTL,
	})

	mux := router.NewRouter(sessions, kv, cfg)

	server := &http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port, "store", cfg.StoreBackend, "allocate", cfg.AllocateSlots)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.RunJanitor(gctx, time.Minute)
	})
	g.Go(func() error {
		// Wait for Ctrl-C or a failed sibling
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("Server closed", "error", err)
	return err
}

func openStore(ctx context.Context, cfg cliparse.Config) (store.KV, func(), error) {
	switch cfg.StoreBackend {
	case cliparse.BackendRedis:
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		slog.Info("Redis store ready")
		return rs, func() { rs.Close() }, nil

	case cliparse.BackendMemory:
		slog.Warn("Using in-memory store; survey data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	default:
		conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.CreateSchema(conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("schema creation failed: %w", err)
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
		return store.NewSQLStore(conn, cfg.DatabaseType), func() { conn.Close() }, nil
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
