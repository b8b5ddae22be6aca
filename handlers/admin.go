// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/danielhkuo/priors/auth"
	"github.com/danielhkuo/priors/cliparse"
	"github.com/danielhkuo/priors/middleware"
	"github.com/danielhkuo/priors/models"
	"github.com/danielhkuo/priors/store"
)

var participantIDPattern = regexp.MustCompile(`^p(0[1-9]|[1-9][0-9]+)$`)

type AdminHandler struct {
	kv  store.KV
	cfg cliparse.Config
}

func NewAdminHandler(kv store.KV, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{kv: kv, cfg: cfg}
}

func (h *AdminHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(h.cfg.Study, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// GetRegistry handles GET /admin/registry
func (h *AdminHandler) GetRegistry(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	registry := models.CompletionRegistry{}
	err := store.ReadInto(r.Context(), h.kv, models.RegistryPath, &registry)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, err, "Failed to read registry")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, registry)
}

// PutTrials handles PUT /admin/participants/{pid}/trials
func (h *AdminHandler) PutTrials(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	pid := models.ParticipantID(r.PathValue("pid"))
	if !participantIDPattern.MatchString(string(pid)) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "participant id must look like p01")
		return
	}

	var trials models.TrialSet
	if err := middleware.ParseJSONBody(r, &trials); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(trials) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "trial set cannot be empty")
		return
	}
	if _, err := trials.Ordered(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.kv.Write(r.Context(), pid.Path(), trials); err != nil {
		writeError(w, err, "Failed to store trial set")
		return
	}

	slog.Info("trial set stored", "participant_id", pid, "trials", len(trials))

	middleware.JSONResponse(w, http.StatusCreated, models.PutTrialsResponse{
		ParticipantID: string(pid),
		Path:          pid.Path(),
		TrialCount:    len(trials),
	})
}

// GetParticipant handles GET /admin/participants/{pid}
// Returns the stored document: the trial set before completion, the result
// list after.
func (h *AdminHandler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	pid := models.ParticipantID(r.PathValue("pid"))
	if !participantIDPattern.MatchString(string(pid)) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "participant id must look like p01")
		return
	}

	raw, err := h.kv.Read(r.Context(), pid.Path())
	if err != nil {
		writeError(w, err, "Failed to read participant")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, raw)
}
