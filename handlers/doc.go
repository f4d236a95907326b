// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the retro board server.

# Handler Types

Each handler is a struct with its dependencies injected by constructor:

  - RoomsHandler: read-only room listing
  - SocketHandler: websocket upgrade into the sync hub

	roomsHandler := handlers.NewRoomsHandler(reg)
	socketHandler := handlers.NewSocketHandler(h, cfg)

# Room Listing

	GET /rooms → {"rooms": ["R1", "R2"]}

Ids only; passwords and boards are never exposed over HTTP.

# Realtime Sync

	GET /ws → websocket

The first frame must be the auth handshake. See package hub for the
command and event flow, and package models for the frame shapes.

Origins are checked against the configured allow-list; an empty list
accepts any origin.
*/
package handlers
