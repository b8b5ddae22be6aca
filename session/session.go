// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/danielhkuo/priors/auth"
	"github.com/danielhkuo/priors/models"
	"github.com/danielhkuo/priors/runner"
	"github.com/danielhkuo/priors/store"
	"github.com/danielhkuo/priors/tracing"
)

var ErrNotFound = errors.New("session not found")

// SlotAllocator hands out participant slots with their trial sets
type SlotAllocator interface {
	Allocate(ctx context.Context) (models.ParticipantID, models.TrialSet, error)
}

type Config struct {
	// AllocateSlots claims a registry slot per session. When false every
	// session runs the Fallback trial set.
	AllocateSlots bool
	Fallback      models.TrialSet
	IPSalt        string
	// SessionTTL evicts sessions idle for longer. Zero keeps them forever.
	SessionTTL time.Duration
	Clock      runner.Clock
}

// Meta describes the client starting a session
type Meta struct {
	ClientIP  string
	UserAgent string
}

// Session is the state of one participant's survey run.
type Session struct {
	ID            string
	Token         string
	ParticipantID models.ParticipantID
	ResultPath    string
	StartedAt     time.Time

	mu        sync.Mutex
	runner    *runner.Runner
	persisted bool
	lastSeen  time.Time
}

// RecordPath is where the session audit record lives
func (s *Session) RecordPath() string {
	return models.SessionsPrefix + s.ID
}

// SubmitResult is the outcome of a submit call
type SubmitResult struct {
	Advanced  bool
	Completed bool
	View      models.TrialView
}

type Manager struct {
	kv    store.KV
	alloc SlotAllocator
	cfg   Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(kv store.KV, alloc SlotAllocator, cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = runner.SystemClock
	}
	return &Manager{
		kv:       kv,
		alloc:    alloc,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Start allocates a slot (when enabled), loads the trials and opens a session
// on the first trial.
func (m *Manager) Start(ctx context.Context, meta Meta) (sess *Session, view models.TrialView, err error) {
	ctx, span := tracing.StartSpan(ctx, "session.Start")
	defer func() { tracing.EndSpan(span, err) }()

	id := uuid.New().String()
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, models.TrialView{}, err
	}

	var (
		pid        models.ParticipantID
		trials     models.TrialSet
		resultPath string
	)
	if m.cfg.AllocateSlots {
		pid, trials, err = m.alloc.Allocate(ctx)
		if err != nil {
			return nil, models.TrialView{}, err
		}
		resultPath = pid.Path()
	} else {
		trials = m.cfg.Fallback
		resultPath = models.SessionsPrefix + id + "/results"
	}
	span.SetAttributes(attribute.String("session_id", id), attribute.String("participant_id", string(pid)))

	r, err := runner.New(trials, m.cfg.Clock)
	if err != nil {
		return nil, models.TrialView{}, fmt.Errorf("failed to start trials for %q: %w", pid, err)
	}

	now := m.cfg.Clock.Now()
	sess = &Session{
		ID:            id,
		Token:         token,
		ParticipantID: pid,
		ResultPath:    resultPath,
		StartedAt:     now,
		runner:        r,
		lastSeen:      now,
	}

	record := models.SessionRecord{
		SessionID:     id,
		ParticipantID: string(pid),
		UserAgent:     meta.UserAgent,
		TrialCount:    len(trials),
		StartedAt:     now.UTC(),
	}
	if meta.ClientIP != "" {
		record.IPHash = auth.HashIP(meta.ClientIP, m.cfg.IPSalt)
	}
	if err := m.kv.Write(ctx, sess.RecordPath(), record); err != nil {
		return nil, models.TrialView{}, fmt.Errorf("failed to write session record: %w", err)
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	slog.Info("session started", "session_id", id, "participant_id", pid, "trials", len(trials))
	return sess, r.View(), nil
}

// View returns the current trial view of a session
func (m *Manager) View(id, token string) (models.TrialView, error) {
	sess, err := m.lookup(id, token)
	if err != nil {
		return models.TrialView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = m.cfg.Clock.Now()

	return sess.runner.View(), nil
}

// Move records a slider movement
func (m *Manager) Move(id, token string, value int) (models.TrialView, error) {
	sess, err := m.lookup(id, token)
	if err != nil {
		return models.TrialView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = m.cfg.Clock.Now()

	if err := sess.runner.Move(value); err != nil {
		return models.TrialView{}, err
	}
	return sess.runner.View(), nil
}

// Submit submits the current trial. On the last trial the results are
// written to the session's result path. A failed write leaves the session
// complete but unpersisted so the submit can be retried.
func (m *Manager) Submit(ctx context.Context, id, token string) (SubmitResult, error) {
	sess, err := m.lookup(id, token)
	if err != nil {
		return SubmitResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = m.cfg.Clock.Now()

	if sess.runner.Complete() {
		if sess.persisted {
			return SubmitResult{}, runner.ErrComplete
		}
		if err := m.persist(ctx, sess, sess.runner.Results()); err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{Completed: true, View: sess.runner.View()}, nil
	}

	out, err := sess.runner.Submit()
	if err != nil {
		return SubmitResult{}, err
	}
	res := SubmitResult{Advanced: out.Advanced, View: sess.runner.View()}
	if !out.Completed {
		return res, nil
	}

	if err := m.persist(ctx, sess, out.Results); err != nil {
		return SubmitResult{}, err
	}
	res.Completed = true
	return res, nil
}

func (m *Manager) persist(ctx context.Context, sess *Session, results []models.ResultRecord) (err error) {
	ctx, span := tracing.StartSpan(ctx, "session.persist",
		attribute.String("session_id", sess.ID),
		attribute.String("path", sess.ResultPath),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if err := m.kv.Write(ctx, sess.ResultPath, results); err != nil {
		slog.Error("failed to persist results", "error", err, "session_id", sess.ID, "path", sess.ResultPath)
		return fmt.Errorf("failed to persist results: %w", err)
	}
	sess.persisted = true

	completedAt := m.cfg.Clock.Now().UTC()
	if err := m.kv.Merge(ctx, sess.RecordPath(), map[string]any{"completed_at": completedAt}); err != nil {
		// results are safe; the audit record just lacks its end time
		slog.Warn("failed to mark session complete", "error", err, "session_id", sess.ID)
	}

	slog.Info("session complete", "session_id", sess.ID, "participant_id", sess.ParticipantID, "trials", len(results))
	return nil
}

func (m *Manager) lookup(id, token string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if err := auth.ValidateSessionToken(sess.Token, token); err != nil {
		return nil, err
	}
	return sess, nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle since before now minus the TTL and returns how
// many were removed.
func (m *Manager) Sweep(now time.Time) int {
	if m.cfg.SessionTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.SessionTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, sess := range m.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) error {
	if m.cfg.SessionTTL <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(m.cfg.Clock.Now()); n > 0 {
				slog.Info("idle sessions evicted", "count", n)
			}
		}
	}
}
