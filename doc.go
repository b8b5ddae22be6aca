// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the priors survey server.

Priors runs a slider-rating survey: each participant is handed a unique
slot from a shared completion registry, rates one stimulus per trial on a
0-100 slider, and has their ratings and response times written back to the
shared store when the last trial is submitted.

# Starting the Server

	ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -store sql -t sqlite -d priors.db

# Configuration

Settings come from the environment (and an optional .env file), with CLI
flags taking precedence:

  - STORE_BACKEND (-store): sql, redis or memory (default: sql)
  - DATABASE_TYPE (-t), DATABASE_URL (-d): SQL store connection
  - REDIS_URL (-redis): Redis store connection
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - ALLOCATE_SLOTS (-allocate): Claim registry slots (default: true)
  - TRIALS_FILE (-trials): YAML trial set used when allocation is off
  - TERMINAL_PAGE (-terminal-page): Redirect target after the last trial
  - TRACE_OUTPUT (-trace): stdout or a file for OpenTelemetry spans
  - PORT (-p): Server port (default: 3318)

# Architecture

  - store: key-value document store (SQL, Redis, memory) with atomic claims
  - allocator: participant slot allocation
  - runner: trial state machine
  - session: per-participant session lifecycle
  - handlers, router, middleware: HTTP surface
  - stimuli: built-in and YAML fallback trial sets
  - models, auth, db, cliparse, tracing: shared types and plumbing

See package documentation for each component.
*/
package main
