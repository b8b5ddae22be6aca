// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/priors/cliparse"
	"github.com/danielhkuo/priors/middleware"
	"github.com/danielhkuo/priors/models"
	"github.com/danielhkuo/priors/session"
)

const sessionTokenHeader = "X-Session-Token"

type SessionHandler struct {
	sessions *session.Manager
	cfg      cliparse.Config
}

func NewSessionHandler(sessions *session.Manager, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{sessions: sessions, cfg: cfg}
}

// StartSession handles POST /sessions
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	sess, view, err := h.sessions.Start(r.Context(), session.Meta{
		ClientIP:  middleware.GetClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, err, "Failed to start session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.StartSessionResponse{
		SessionID:     sess.ID,
		SessionToken:  sess.Token,
		ParticipantID: string(sess.ParticipantID),
		View:          view,
	})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.View(r.PathValue("id"), r.Header.Get(sessionTokenHeader))
	if err != nil {
		writeError(w, err, "Failed to load session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// MoveSlider handles POST /sessions/{id}/slider
// The page calls it on every slider input event
func (h *SessionHandler) MoveSlider(w http.ResponseWriter, r *http.Request) {
	var req models.MoveSliderRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Value == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "value is required")
		return
	}

	view, err := h.sessions.Move(r.PathValue("id"), r.Header.Get(sessionTokenHeader), *req.Value)
	if err != nil {
		writeError(w, err, "Failed to move slider")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// Submit handles POST /sessions/{id}/submit
// Without a slider movement since the last submit nothing changes and
// advanced is false.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessions.Submit(r.Context(), r.PathValue("id"), r.Header.Get(sessionTokenHeader))
	if err != nil {
		writeError(w, err, "Failed to submit rating")
		return
	}

	resp := models.SubmitResponse{
		Advanced: res.Advanced,
		View:     res.View,
	}
	if res.Completed {
		resp.Redirect = h.cfg.TerminalPage
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
