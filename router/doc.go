// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the priors survey API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(sessions, kv, cfg)

# Endpoints

Health:

	GET /health

Survey sessions (public, X-Session-Token after start):

	POST /sessions              - Allocate a slot and open the first trial
	GET  /sessions/{id}         - Current trial view
	POST /sessions/{id}/slider  - Record a slider movement
	POST /sessions/{id}/submit  - Submit the current rating

Administration (requires X-Admin-Key):

	GET /admin/registry                  - Completion registry
	PUT /admin/participants/{pid}/trials - Store a trial set
	GET /admin/participants/{pid}        - Trial set or results

# Handler Initialization

	sessionHandler := handlers.NewSessionHandler(sessions, cfg)
	adminHandler := handlers.NewAdminHandler(kv, cfg)
*/
package router
