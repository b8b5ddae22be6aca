// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package allocator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/danielhkuo/priors/models"
	"github.com/danielhkuo/priors/store"
	"github.com/danielhkuo/priors/tracing"
)

var (
	ErrNoSlot            = errors.New("no participant slot could be claimed")
	ErrTrialSetNotFound  = errors.New("no trial set stored for participant")
	ErrMalformedTrialSet = errors.New("malformed trial set")
)

// DefaultMaxClaimAttempts bounds how many lost claim races Allocate tolerates
const DefaultMaxClaimAttempts = 5

type Allocator struct {
	kv           store.KV
	maxAttempts  int
	readTimeout  time.Duration
	registryPath string
}

type Option func(*Allocator)

// WithMaxClaimAttempts sets the number of claims tried before giving up.
func WithMaxClaimAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithReadTimeout bounds each registry and trial set read.
func WithReadTimeout(d time.Duration) Option {
	return func(a *Allocator) { a.readTimeout = d }
}

func New(kv store.KV, opts ...Option) *Allocator {
	a := &Allocator{
		kv:           kv,
		maxAttempts:  DefaultMaxClaimAttempts,
		registryPath: models.RegistryPath,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate claims the first free participant slot and returns its trial set.
// A claimed slot stays claimed even if the trial set cannot be loaded.
func (a *Allocator) Allocate(ctx context.Context) (pid models.ParticipantID, trials models.TrialSet, err error) {
	ctx, span := tracing.StartSpan(ctx, "allocator.Allocate")
	defer func() {
		span.SetAttributes(attribute.String("participant_id", string(pid)))
		tracing.EndSpan(span, err)
	}()

	pid, err = a.claim(ctx)
	if err != nil {
		return "", nil, err
	}

	trials, err = a.trialSet(ctx, pid)
	if err != nil {
		return pid, nil, err
	}
	return pid, trials, nil
}

func (a *Allocator) claim(ctx context.Context) (models.ParticipantID, error) {
	registry, err := a.registry(ctx)
	if err != nil {
		return "", err
	}

	start := 1
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		n := NextFree(registry, start)
		pid := models.ParticipantIDFor(n)

		claimed, err := a.kv.Claim(ctx, a.registryPath, string(pid))
		if err != nil {
			return "", fmt.Errorf("failed to claim %s: %w", pid, err)
		}
		if claimed {
			slog.Info("slot claimed", "participant_id", pid, "attempt", attempt)
			return pid, nil
		}

		slog.Warn("slot claim lost", "participant_id", pid, "attempt", attempt)
		registry[string(pid)] = true
		start = n + 1
	}

	return "", fmt.Errorf("%w after %d attempts", ErrNoSlot, a.maxAttempts)
}

func (a *Allocator) registry(ctx context.Context) (models.CompletionRegistry, error) {
	ctx, cancel := a.withReadTimeout(ctx)
	defer cancel()

	registry := models.CompletionRegistry{}
	err := store.ReadInto(ctx, a.kv, a.registryPath, &registry)
	if errors.Is(err, store.ErrNotFound) {
		return models.CompletionRegistry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read completion registry: %w", err)
	}
	if registry == nil {
		registry = models.CompletionRegistry{}
	}
	return registry, nil
}

func (a *Allocator) trialSet(ctx context.Context, pid models.ParticipantID) (models.TrialSet, error) {
	ctx, cancel := a.withReadTimeout(ctx)
	defer cancel()

	raw, err := a.kv.Read(ctx, pid.Path())
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTrialSetNotFound, pid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trial set for %s: %w", pid, err)
	}

	var trials models.TrialSet
	if err := json.Unmarshal(raw, &trials); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTrialSet, pid, err)
	}
	if len(trials) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTrialSetNotFound, pid)
	}
	if _, err := trials.Ordered(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTrialSet, pid, err)
	}
	return trials, nil
}

func (a *Allocator) withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.readTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.readTimeout)
}

// NextFree returns the first slot number >= start whose participant ID is not
// marked true in the registry.
func NextFree(registry models.CompletionRegistry, start int) int {
	if start < 1 {
		start = 1
	}
	n := start
	for registry[string(models.ParticipantIDFor(n))] {
		n++
	}
	return n
}
