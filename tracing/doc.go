// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tracing wires OpenTelemetry into the server. Spans are no-ops until
// Init installs a provider.
package tracing
