// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/retroboard/middleware"
	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/registry"
)

type RoomsHandler struct {
	rooms *registry.Registry
}

func NewRoomsHandler(rooms *registry.Registry) *RoomsHandler {
	return &RoomsHandler{rooms: rooms}
}

// ListRooms handles GET /rooms. Only ids are exposed, never passwords or
// board contents.
func (h *RoomsHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.RoomsResponse{
		Rooms: h.rooms.ListRoomIDs(),
	})
}
