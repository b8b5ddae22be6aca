// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("ALLOCATE_SLOTS", "false")
	t.Setenv("READ_TIMEOUT", "3s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.AllocateSlots {
		t.Error("expected slot allocation disabled")
	}
	if cfg.ReadTimeout != 3*time.Second {
		t.Errorf("expected 3s read timeout, got %s", cfg.ReadTimeout)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "priors.db")
	t.Setenv("ADMIN_KEY_SALT", "s1")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.StoreBackend != BackendSQL || cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sql/sqlite defaults, got %s/%s", cfg.StoreBackend, cfg.DatabaseType)
	}
	if !cfg.AllocateSlots {
		t.Error("expected slot allocation enabled by default")
	}
	if cfg.MaxClaimAttempts != 5 {
		t.Errorf("expected 5 claim attempts, got %d", cfg.MaxClaimAttempts)
	}
	if cfg.TerminalPage != "debrief.html" {
		t.Errorf("expected debrief.html, got %s", cfg.TerminalPage)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h session TTL, got %s", cfg.SessionTTL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOCATE_SLOTS", "true")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-allocate=false"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.AllocateSlots {
		t.Error("CLI should override env: expected allocation disabled")
	}
}

func TestParseFlags_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"ADMIN_KEY_SALT": "s"}, nil},
		{"missing salt", map[string]string{"DATABASE_URL": "x.db"}, nil},
		{"bad database type", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY_SALT": "s", "DATABASE_TYPE": "mysql"}, nil},
		{"redis without url", map[string]string{"ADMIN_KEY_SALT": "s"}, []string{"-store", "redis"}},
		{"unknown backend", map[string]string{"ADMIN_KEY_SALT": "s"}, []string{"-store", "firebase"}},
		{"zero claim attempts", map[string]string{"ADMIN_KEY_SALT": "s"}, []string{"-store", "memory", "-claim-attempts", "0"}},
		{"bad env duration", map[string]string{"ADMIN_KEY_SALT": "s", "READ_TIMEOUT": "soon"}, []string{"-store", "memory"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseFlags_MemoryBackend(t *testing.T) {
	t.Setenv("ADMIN_KEY_SALT", "s")

	cfg, err := ParseFlags([]string{"-store", "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.StoreBackend)
	}
}
