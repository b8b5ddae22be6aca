// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrNotObject = errors.New("document is not an object")
	ErrConflict  = errors.New("too many concurrent updates")
)

// KV is the shared key-value store the survey keeps its state in.
// Documents are JSON values addressed by slash-separated paths.
type KV interface {
	// Read returns the document at path or ErrNotFound.
	Read(ctx context.Context, path string) (json.RawMessage, error)
	// Merge sets the given fields on the object at path, creating it if needed.
	Merge(ctx context.Context, path string, fields map[string]any) error
	// Write replaces the document at path.
	Write(ctx context.Context, path string, value any) error
	// Claim atomically sets key to true on the object at path unless it is
	// already true. It reports whether this call made the change.
	Claim(ctx context.Context, path, key string) (bool, error)
}

// ReadInto reads the document at path and decodes it into dest.
func ReadInto(ctx context.Context, kv KV, path string, dest any) error {
	raw, err := kv.Read(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// mutation transforms a stored document. It returns the new document and
// whether anything changed; raw is nil when the path does not exist yet.
type mutation func(raw []byte) ([]byte, bool, error)

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	obj := map[string]json.RawMessage{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return obj, nil
	}
	if raw[0] != '{' {
		return nil, ErrNotObject
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return obj, nil
}

func mergeFields(fields map[string]any) mutation {
	return func(raw []byte) ([]byte, bool, error) {
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, false, err
		}
		for k, v := range fields {
			enc, err := json.Marshal(v)
			if err != nil {
				return nil, false, fmt.Errorf("failed to encode field %s: %w", k, err)
			}
			obj[k] = enc
		}
		out, err := json.Marshal(obj)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}
}

func claimKey(key string, claimed *bool) mutation {
	return func(raw []byte) ([]byte, bool, error) {
		*claimed = false
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, false, err
		}
		if v, ok := obj[key]; ok {
			var taken bool
			if json.Unmarshal(v, &taken) == nil && taken {
				return nil, false, nil
			}
		}
		obj[key] = json.RawMessage("true")
		out, err := json.Marshal(obj)
		if err != nil {
			return nil, false, err
		}
		*claimed = true
		return out, true, nil
	}
}
