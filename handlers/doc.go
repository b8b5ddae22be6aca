// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the priors survey API.

# Handler Types

  - SessionHandler: survey session lifecycle, backed by a session.Manager
  - AdminHandler: registry and trial set administration, backed by the store

# Survey Flow

	POST /sessions             → StartSession (returns session_token)
	POST /sessions/{id}/slider → MoveSlider (enables submit)
	POST /sessions/{id}/submit → Submit (advances, or redirects when done)

Session operations require the X-Session-Token header. A submit that
completes the survey carries the terminal page in "redirect".

# Administration

Admin operations require the X-Admin-Key header, derived from the study
name and ADMIN_KEY_SALT:

	key := auth.GenerateAdminKey(cfg.Study, cfg.AdminKeySalt)

# Errors

Domain errors map to status codes in writeError: unknown sessions and
missing trial sets are 404, an exhausted registry or a finished survey is
409, and store timeouts are 503.
*/
package handlers
