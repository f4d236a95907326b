// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation for the SQL
snapshot store.

# Connecting

Open selects the driver from the database type and pings the server:

	conn, err := db.Open(db.TypeSQLite, "file:rooms.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

sqlite uses modernc.org/sqlite (pure Go, no cgo); postgres uses lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables.

# Tables

  - room_snapshot: one row per stored registry document (id "registry"),
    payload is the JSON document, updated_at the time of the last write
*/
package db
