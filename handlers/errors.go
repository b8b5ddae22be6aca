// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/priors/allocator"
	"github.com/danielhkuo/priors/auth"
	"github.com/danielhkuo/priors/middleware"
	"github.com/danielhkuo/priors/runner"
	"github.com/danielhkuo/priors/session"
	"github.com/danielhkuo/priors/store"
)

// writeError maps domain errors to HTTP responses. Anything unrecognised is
// logged and reported as a 500 with the given fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, runner.ErrRatingOutOfRange):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidSessionToken):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
	case errors.Is(err, session.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, allocator.ErrTrialSetNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "No trials stored for this participant")
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
	case errors.Is(err, allocator.ErrNoSlot):
		middleware.ErrorResponse(w, http.StatusConflict, "No participant slot available")
	case errors.Is(err, runner.ErrComplete):
		middleware.ErrorResponse(w, http.StatusConflict, "Survey already complete")
	case errors.Is(err, context.DeadlineExceeded):
		slog.Error(fallback, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Store did not respond in time")
	default:
		slog.Error(fallback, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}
