// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/priors/cliparse"
	"github.com/danielhkuo/priors/handlers"
	"github.com/danielhkuo/priors/middleware"
	"github.com/danielhkuo/priors/session"
	"github.com/danielhkuo/priors/store"
)

func NewRouter(sessions *session.Manager, kv store.KV, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessions, cfg)
	adminHandler := handlers.NewAdminHandler(kv, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Survey sessions (public, session token after start)
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.StartSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /sessions/{id}/slider", middleware.WithLogging(sessionHandler.MoveSlider))
	mux.HandleFunc("POST /sessions/{id}/submit", middleware.WithLogging(sessionHandler.Submit))

	// Study administration
	mux.HandleFunc("GET /admin/registry", middleware.WithLogging(adminHandler.GetRegistry))
	mux.HandleFunc("PUT /admin/participants/{pid}/trials", middleware.WithLogging(adminHandler.PutTrials))
	mux.HandleFunc("GET /admin/participants/{pid}", middleware.WithLogging(adminHandler.GetParticipant))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("priors survey API v1"))
	})

	return mux
}
