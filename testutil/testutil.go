// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/priors/allocator"
	"github.com/danielhkuo/priors/cliparse"
	"github.com/danielhkuo/priors/db"
	"github.com/danielhkuo/priors/models"
	"github.com/danielhkuo/priors/session"
	"github.com/danielhkuo/priors/stimuli"
	"github.com/danielhkuo/priors/store"
)

// SetupTestStore opens a fresh in-memory SQLite store with the schema applied
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return store.NewSQLStore(conn, db.TypeSQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		StoreBackend:     cliparse.BackendSQL,
		DatabaseURL:      ":memory:",
		DatabaseType:     "sqlite",
		AdminKeySalt:     "test-admin-salt",
		Study:            "priors",
		AllocateSlots:    true,
		MaxClaimAttempts: 5,
		ReadTimeout:      2 * time.Second,
		SessionTTL:       time.Hour,
		TerminalPage:     models.DefaultTerminalPage,
	}
}

// SeedTrialSet stores a trial set for the participant with the given stimuli
func SeedTrialSet(t *testing.T, kv store.KV, pid models.ParticipantID, stims ...string) models.TrialSet {
	t.Helper()

	trials := models.TrialSet{}
	for i, s := range stims {
		trials[models.TrialKey(i+1)] = models.Trial{Stim1: s}
	}
	if err := kv.Write(context.Background(), pid.Path(), trials); err != nil {
		t.Fatalf("Failed to seed trial set: %v", err)
	}
	return trials
}

// SeedRegistry marks the given participants as taken
func SeedRegistry(t *testing.T, kv store.KV, pids ...models.ParticipantID) {
	t.Helper()

	registry := models.CompletionRegistry{}
	for _, pid := range pids {
		registry[string(pid)] = true
	}
	if err := kv.Write(context.Background(), models.RegistryPath, registry); err != nil {
		t.Fatalf("Failed to seed registry: %v", err)
	}
}

// NewTestManager builds a session manager wired the way main does it
func NewTestManager(kv store.KV, cfg cliparse.Config) *session.Manager {
	alloc := allocator.New(kv,
		allocator.WithMaxClaimAttempts(cfg.MaxClaimAttempts),
		allocator.WithReadTimeout(cfg.ReadTimeout),
	)
	return session.NewManager(kv, alloc, session.Config{
		AllocateSlots: cfg.AllocateSlots,
		Fallback:      stimuli.Default(),
		IPSalt:        cfg.AdminKeySalt,
		SessionTTL:    cfg.SessionTTL,
	})
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
