// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/priors/models"
	"github.com/danielhkuo/priors/store"
	"github.com/danielhkuo/priors/testutil"
)

func startSession(t *testing.T, handler *SessionHandler) models.StartSessionResponse {
	t.Helper()

	req := testutil.MakeRequest("POST", "/sessions", nil, map[string]string{
		"User-Agent":      "survey-test",
		"X-Forwarded-For": "203.0.113.9",
	})
	w := httptest.NewRecorder()
	handler.StartSession(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.StartSessionResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func moveSlider(handler *SessionHandler, id, token string, body interface{}) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/sessions/"+id+"/slider", body, map[string]string{
		"X-Session-Token": token,
	})
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.MoveSlider(w, req)
	return w
}

func submit(handler *SessionHandler, id, token string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/sessions/"+id+"/submit", nil, map[string]string{
		"X-Session-Token": token,
	})
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.Submit(w, req)
	return w
}

func TestStartSession(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	testutil.SeedRegistry(t, kv, "p01", "p02")
	testutil.SeedTrialSet(t, kv, "p03", "excitement", "misery", "alarm")

	handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)
	resp := startSession(t, handler)

	if resp.SessionID == "" || resp.SessionToken == "" {
		t.Fatalf("Expected session id and token, got %+v", resp)
	}
	if resp.ParticipantID != "p03" {
		t.Errorf("Expected participant p03, got %q", resp.ParticipantID)
	}

	view := resp.View
	if view.Stimulus != "excitement" {
		t.Errorf("Expected first stimulus 'excitement', got %q", view.Stimulus)
	}
	if view.Prompt != "How likely is a person to be experiencing the mental state: excitement?" {
		t.Errorf("Unexpected prompt %q", view.Prompt)
	}
	if view.SliderValue != models.SliderDefault {
		t.Errorf("Expected slider at %d, got %d", models.SliderDefault, view.SliderValue)
	}
	if view.SubmitEnabled {
		t.Error("Submit should be disabled before the slider moves")
	}
	if view.ProgressPct != 33 || view.ProgressLabel != "1/3" {
		t.Errorf("Expected progress 33%% '1/3', got %d%% %q", view.ProgressPct, view.ProgressLabel)
	}

	// Registry claim is visible in the store
	var registry models.CompletionRegistry
	if err := store.ReadInto(context.Background(), kv, models.RegistryPath, &registry); err != nil {
		t.Fatalf("Failed to read registry: %v", err)
	}
	if !registry["p03"] {
		t.Errorf("Expected p03 claimed, got %v", registry)
	}

	// Session audit record carries a hashed IP, never the raw one
	var record models.SessionRecord
	if err := store.ReadInto(context.Background(), kv, models.SessionsPrefix+resp.SessionID, &record); err != nil {
		t.Fatalf("Failed to read session record: %v", err)
	}
	if record.IPHash == "" || record.IPHash == "203.0.113.9" {
		t.Errorf("Expected hashed IP, got %q", record.IPHash)
	}
	if record.UserAgent != "survey-test" {
		t.Errorf("Expected user agent 'survey-test', got %q", record.UserAgent)
	}
}

func TestStartSessionErrors(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(t *testing.T, kv store.KV)
		expectedStatus int
	}{
		{
			name:           "no trial set stored for slot",
			setup:          func(t *testing.T, kv store.KV) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "malformed trial set",
			setup: func(t *testing.T, kv store.KV) {
				if err := kv.Write(context.Background(), models.ParticipantID("p01").Path(), []string{"nope"}); err != nil {
					t.Fatalf("Failed to seed: %v", err)
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := testutil.SetupTestStore(t)
			cfg := testutil.GetTestConfig()
			tt.setup(t, kv)

			handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)
			w := httptest.NewRecorder()
			handler.StartSession(w, testutil.MakeRequest("POST", "/sessions", nil, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestStartSessionFallback(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	cfg.AllocateSlots = false

	handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)
	resp := startSession(t, handler)

	if resp.ParticipantID != "" {
		t.Errorf("Expected no participant without allocation, got %q", resp.ParticipantID)
	}
	if resp.View.Stimulus != "excitement" || resp.View.Total != 3 {
		t.Errorf("Expected built-in trial set, got %+v", resp.View)
	}

	// No slot claimed
	_, err := kv.Read(context.Background(), models.RegistryPath)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected registry untouched, got err=%v", err)
	}
}

func TestMoveSlider(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	testutil.SeedTrialSet(t, kv, "p01", "excitement", "misery")

	handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)
	started := startSession(t, handler)

	tests := []struct {
		name           string
		token          string
		body           interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, view models.TrialView)
	}{
		{
			name:           "valid move",
			token:          started.SessionToken,
			body:           map[string]int{"value": 70},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, view models.TrialView) {
				if view.SliderValue != 70 {
					t.Errorf("Expected slider 70, got %d", view.SliderValue)
				}
				if !view.SubmitEnabled {
					t.Error("Expected submit enabled after moving")
				}
			},
		},
		{
			name:           "missing value",
			token:          started.SessionToken,
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "out of range",
			token:          started.SessionToken,
			body:           map[string]int{"value": 101},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong token",
			token:          "not-the-token",
			body:           map[string]int{"value": 10},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing token",
			token:          "",
			body:           map[string]int{"value": 10},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := moveSlider(handler, started.SessionID, tt.token, tt.body)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.checkResponse != nil && w.Code == http.StatusOK {
				var view models.TrialView
				testutil.AssertJSON(t, w, &view)
				tt.checkResponse(t, view)
			}
		})
	}
}

func TestUnknownSession(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)

	req := testutil.MakeRequest("GET", "/sessions/missing", nil, map[string]string{"X-Session-Token": "x"})
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	handler.GetSession(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = submit(handler, "missing", "x")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestSubmitWithoutMove(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	testutil.SeedTrialSet(t, kv, "p01", "excitement", "misery")

	handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)
	started := startSession(t, handler)

	w := submit(handler, started.SessionID, started.SessionToken)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Advanced {
		t.Error("Submit without a slider movement should not advance")
	}
	if resp.View.Index != 1 {
		t.Errorf("Expected to stay on trial 1, got %d", resp.View.Index)
	}
	if resp.Redirect != "" {
		t.Errorf("Expected no redirect, got %q", resp.Redirect)
	}
}

// TestCompleteSurvey runs the three-trial survey from start to redirect and
// checks the result list written over the participant's trial set.
func TestCompleteSurvey(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	testutil.SeedRegistry(t, kv, "p01", "p02")
	testutil.SeedTrialSet(t, kv, "p03", "excitement", "misery", "alarm")

	handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)
	started := startSession(t, handler)

	ratings := []int{70, 30, 90}
	wantProgress := []int{67, 100, 100}
	var last models.SubmitResponse
	for i, rating := range ratings {
		w := moveSlider(handler, started.SessionID, started.SessionToken, map[string]int{"value": rating})
		testutil.AssertStatus(t, w, http.StatusOK)

		w = submit(handler, started.SessionID, started.SessionToken)
		testutil.AssertStatus(t, w, http.StatusOK)

		last = models.SubmitResponse{}
		testutil.AssertJSON(t, w, &last)
		if !last.Advanced {
			t.Fatalf("Submit %d did not advance", i+1)
		}
		if last.View.ProgressPct != wantProgress[i] {
			t.Errorf("After submit %d expected progress %d, got %d", i+1, wantProgress[i], last.View.ProgressPct)
		}
	}

	if last.Redirect != "debrief.html" {
		t.Errorf("Expected redirect to debrief.html, got %q", last.Redirect)
	}
	if !last.View.Complete {
		t.Error("Expected completed view")
	}

	raw, err := kv.Read(context.Background(), models.ParticipantID("p03").Path())
	if err != nil {
		t.Fatalf("Failed to read results: %v", err)
	}
	var results []models.ResultRecord
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatalf("Expected result list at participant path, got %s", raw)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Rating == nil || *r.Rating != ratings[i] {
			t.Errorf("Result %d: expected rating %d, got %v", i, ratings[i], r.Rating)
		}
		if r.RT == nil || *r.RT < 0 {
			t.Errorf("Result %d: expected non-negative rt, got %v", i, r.RT)
		}
	}
	if results[1].Stim1 != "misery" {
		t.Errorf("Expected results in trial order, got %+v", results)
	}

	// Further submits are rejected
	w := submit(handler, started.SessionID, started.SessionToken)
	testutil.AssertStatus(t, w, http.StatusConflict)
}
