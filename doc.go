// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the retroboard server.

Retroboard is a realtime retrospective board. Clients join a password
protected room over a websocket, then add, move and vote on cards in the
good, bad and action columns. Every change is broadcast to everyone in
the room and the whole registry is snapshotted after each mutation.

# Starting the Server

With defaults (port 3100, snapshot in ./rooms.json, client from ./public):

	go run .

Or with flags:

	go run . -p 8080 -s sqlite -d "file:retro.db"

A .env file in the working directory is loaded before flags are parsed.

# Configuration

See package cliparse for every flag and environment variable. Common ones:

  - PORT (-p): Server port (default: 3100)
  - SNAPSHOT_STORE (-s): memory, file, sqlite, postgres, redis or s3
  - MAX_VOTES (--max-votes): votes per identity per room (default: 3)

# Architecture

  - board: column and card rules
  - quota: per-identity vote budget
  - registry: rooms, credentials and snapshot persistence
  - snapshot: file, SQL, redis and S3 snapshot stores
  - auth: handshake validation and admission
  - hub: websocket sessions, dispatch and room broadcast
  - handlers: HTTP handlers for /rooms and /ws
  - router: route definitions using gorilla/mux
  - middleware: CORS, origin checks, logging, JSON helpers
  - models: wire and snapshot types
  - db: SQL connection and schema
  - cliparse: Configuration parsing

On SIGINT or SIGTERM the server stops accepting connections, disconnects
every websocket and writes a final snapshot.

See package documentation for each component.
*/
package main
