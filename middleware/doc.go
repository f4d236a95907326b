// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	r.HandleFunc("/rooms", middleware.WithLogging(handler))

Logs request start at debug level (method, path, remote) and completion
(status, duration_ms). The wrapper supports http.Hijacker, so it can sit
in front of the websocket endpoint; there completion is logged when the
connection closes.

# CORS Middleware

Enable cross-origin reads of the HTTP endpoints:

	r.Use(middleware.CORS(cfg.AllowedOrigins))

Allows GET and OPTIONS. Preflight requests are answered with 204.

# Origin Checks

OriginChecker backs both CORS and the websocket upgrader:

	upgrader.CheckOrigin = middleware.OriginChecker(cfg.AllowedOrigins)

An empty allow-list accepts every origin.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "message")

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used to tag connection logs.
*/
package middleware
