// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/retroboard/cliparse"
	"github.com/danielhkuo/retroboard/hub"
	"github.com/danielhkuo/retroboard/middleware"
)

type SocketHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewSocketHandler(h *hub.Hub, cfg cliparse.Config) *SocketHandler {
	return &SocketHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     middleware.OriginChecker(cfg.AllowedOrigins),
		},
	}
}

// Connect handles GET /ws. The connection is served until the client
// disconnects or the hub shuts down.
func (h *SocketHandler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		slog.Warn("websocket upgrade failed", "remote", middleware.GetClientIP(r), "error", err)
		return
	}

	slog.Info("websocket connected", "remote", middleware.GetClientIP(r))
	h.hub.ServeConn(r.Context(), conn)
}
