// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver from the database type:

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "priors.db")

PostgreSQL uses github.com/lib/pq. SQLite uses the pure-Go modernc.org/sqlite
driver and is capped at a single open connection, which serializes writes.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv_document: one JSON document per store path

The store package layers the survey paths on top of it:

	priors/completedParticipants         → completion registry
	priors/participants/participantNN    → trial set in, results out
	priors/sessions/<session id>         → session audit record
*/
package db
