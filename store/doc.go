// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides the shared key-value store the survey state lives in.

# Operations

KV has four operations over JSON documents addressed by path:

	raw, err := kv.Read(ctx, "priors/completedParticipants")
	err := kv.Merge(ctx, "priors/sessions/abc", map[string]any{"completed_at": now})
	err := kv.Write(ctx, "priors/participants/participant03", results)
	claimed, err := kv.Claim(ctx, "priors/completedParticipants", "p03")

Read returns ErrNotFound for missing paths. Claim is a compare-and-set: it
sets the key to true only if it is not already true, so two sessions racing
for the same slot cannot both win.

# Backends

  - SQLStore: kv_document table on PostgreSQL or SQLite
  - RedisStore: one JSON string per key, WATCH/MULTI for Merge and Claim
  - MemoryStore: process memory, for tests and single-node demos
*/
package store
