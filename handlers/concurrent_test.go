// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielhkuo/priors/models"
	"github.com/danielhkuo/priors/testutil"
)

// TestConcurrentSessionStarts verifies that simultaneous session starts
// never hand the same participant slot to two sessions
func TestConcurrentSessionStarts(t *testing.T) {
	kv := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	cfg.MaxClaimAttempts = 20

	numSessions := 6
	for i := 1; i <= numSessions; i++ {
		testutil.SeedTrialSet(t, kv, models.ParticipantIDFor(i), "excitement")
	}

	handler := NewSessionHandler(testutil.NewTestManager(kv, cfg), cfg)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		pids = make(map[string]int)
	)
	for i := 0; i < numSessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := httptest.NewRecorder()
			handler.StartSession(w, testutil.MakeRequest("POST", "/sessions", nil, nil))
			if w.Code != http.StatusCreated {
				t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
				return
			}

			var resp models.StartSessionResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Errorf("Failed to decode response: %v", err)
				return
			}

			mu.Lock()
			pids[resp.ParticipantID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(pids) != numSessions {
		t.Errorf("Expected %d distinct participants, got %v", numSessions, pids)
	}
	for pid, n := range pids {
		if n != 1 {
			t.Errorf("Participant %s handed out %d times", pid, n)
		}
	}
}
