// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"testing"
)

func TestOpenSQLiteAndCreateSchema(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"in memory", ":memory:"},
		{"file", filepath.Join(t.TempDir(), "priors.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Open(TypeSQLite, tt.url)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer conn.Close()

			// Idempotent
			for i := 0; i < 2; i++ {
				if err := CreateSchema(conn); err != nil {
					t.Fatalf("CreateSchema call %d failed: %v", i+1, err)
				}
			}

			if _, err := conn.Exec(`INSERT INTO kv_document (path, value) VALUES ('a', '{}')`); err != nil {
				t.Errorf("Insert into kv_document failed: %v", err)
			}
		})
	}
}

func TestOpenUnsupportedType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}
