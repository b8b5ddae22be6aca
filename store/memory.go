// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return append(json.RawMessage(nil), doc...), nil
}

func (m *MemoryStore) Write(ctx context.Context, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	m.mu.Lock()
	m.docs[path] = enc
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	return m.update(ctx, path, mergeFields(fields))
}

func (m *MemoryStore) Claim(ctx context.Context, path, key string) (bool, error) {
	var claimed bool
	err := m.update(ctx, path, claimKey(key, &claimed))
	return claimed, err
}

func (m *MemoryStore) update(ctx context.Context, path string, fn mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	updated, changed, err := fn(m.docs[path])
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if changed {
		m.docs[path] = updated
	}
	return nil
}
