// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the retro board server.

# Route Registration

NewRouter creates a configured gorilla/mux router with all endpoints:

	r := router.NewRouter(reg, h, cfg)

# Endpoints

Health:

	GET /health - "OK"

Rooms (read-only):

	GET /rooms - {"rooms": [...]} sorted ids

Realtime:

	GET /ws - websocket, auth handshake first

Static client:

	GET /* - files from cfg.StaticDir, or a plain banner when it is empty

Unknown paths return 404 and known paths with the wrong method return 405.
CORS headers are added to every matched route.
*/
package router
