// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"time"
)

// Store paths shared with the survey pages
const (
	RegistryPath        = "priors/completedParticipants"
	ParticipantsPrefix  = "priors/participants/participant"
	SessionsPrefix      = "priors/sessions/"
	DefaultTerminalPage = "debrief.html"
)

// Slider constants
const (
	SliderMin     = 0
	SliderMax     = 100
	SliderDefault = 50
)

// PromptTemplate is the question shown for every stimulus
const PromptTemplate = "How likely is a person to be experiencing the mental state: %s?"

// ParticipantID is a slot identifier of the form p01..p09, p10, p11, ...
type ParticipantID string

// ParticipantIDFor returns the identifier for slot n (1-based).
func ParticipantIDFor(n int) ParticipantID {
	return ParticipantID(fmt.Sprintf("p%02d", n))
}

// Path returns the store path holding this participant's trials and results.
func (p ParticipantID) Path() string {
	if len(p) < 2 {
		return ParticipantsPrefix + string(p)
	}
	return ParticipantsPrefix + string(p[1:])
}

// CompletionRegistry maps participant IDs to "slot taken".
type CompletionRegistry map[string]bool

// Trial is one stimulus entry of a TrialSet.
type Trial struct {
	Stim1 string `json:"stim1" yaml:"stim1"`
}

// TrialSet maps trial01, trial02, ... to trials.
type TrialSet map[string]Trial

// TrialKey returns the key of the i-th trial (1-based).
func TrialKey(i int) string {
	return fmt.Sprintf("trial%02d", i)
}

// Ordered returns the trials in index order. Keys must form the contiguous
// sequence trial01..trialNN.
func (ts TrialSet) Ordered() ([]Trial, error) {
	out := make([]Trial, 0, len(ts))
	for i := 1; i <= len(ts); i++ {
		t, ok := ts[TrialKey(i)]
		if !ok {
			return nil, fmt.Errorf("missing %s in trial set of %d", TrialKey(i), len(ts))
		}
		out = append(out, t)
	}
	return out, nil
}

// ResultRecord is one trial's outcome. Rating and RT stay null until submitted.
type ResultRecord struct {
	Stim1  string `json:"stim1"`
	Rating *int   `json:"rating"`
	RT     *int64 `json:"rt"`
}

// SessionRecord is the audit document kept per survey session
type SessionRecord struct {
	SessionID     string     `json:"session_id"`
	ParticipantID string     `json:"participant_id,omitempty"`
	IPHash        string     `json:"ip_hash,omitempty"`
	UserAgent     string     `json:"user_agent,omitempty"`
	TrialCount    int        `json:"trial_count"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// TrialView is everything a page needs to render the current trial
type TrialView struct {
	Prompt        string `json:"prompt"`
	Stimulus      string `json:"stimulus"`
	Index         int    `json:"index"` // 1-indexed
	Total         int    `json:"total"`
	SliderValue   int    `json:"slider_value"`
	SubmitEnabled bool   `json:"submit_enabled"`
	ProgressPct   int    `json:"progress_pct"`
	ProgressLabel string `json:"progress_label"`
	Complete      bool   `json:"complete"`
}

// Request types

type MoveSliderRequest struct {
	Value *int `json:"value"`
}

// Response types

type StartSessionResponse struct {
	SessionID     string    `json:"session_id"`
	SessionToken  string    `json:"session_token"`
	ParticipantID string    `json:"participant_id,omitempty"`
	View          TrialView `json:"view"`
}

type SubmitResponse struct {
	Advanced bool      `json:"advanced"`
	View     TrialView `json:"view"`
	Redirect string    `json:"redirect,omitempty"`
}

type PutTrialsResponse struct {
	ParticipantID string `json:"participant_id"`
	Path          string `json:"path"`
	TrialCount    int    `json:"trial_count"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
