// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (main loads a .env file beforehand if
one exists), then CLI flags override them.

# Settings

	Flag             Env                 Default
	-p               PORT                3318
	-store           STORE_BACKEND       sql (sql, redis, memory)
	-d               DATABASE_URL        (required for sql)
	-t               DATABASE_TYPE       sqlite (sqlite, postgres)
	-redis           REDIS_URL           (required for redis)
	-admin-salt      ADMIN_KEY_SALT      (required)
	-study           STUDY               priors
	-allocate        ALLOCATE_SLOTS      true
	-claim-attempts  MAX_CLAIM_ATTEMPTS  5
	-read-timeout    READ_TIMEOUT        10s
	-session-ttl     SESSION_TTL         2h
	-trials          TRIALS_FILE         (built-in set)
	-terminal-page   TERMINAL_PAGE       debrief.html
	-trace           TRACE_OUTPUT        (off; stdout or file path)
	-log-level       LOG_LEVEL           info

# Validation

ParseFlags returns an error if required values for the chosen store backend
are missing, ADMIN_KEY_SALT is empty, or a value is out of range.

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	mux := router.NewRouter(sessions, kv, cfg)
*/
package cliparse
