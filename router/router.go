// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/danielhkuo/retroboard/cliparse"
	"github.com/danielhkuo/retroboard/handlers"
	"github.com/danielhkuo/retroboard/hub"
	"github.com/danielhkuo/retroboard/middleware"
	"github.com/danielhkuo/retroboard/registry"
)

func NewRouter(reg *registry.Registry, h *hub.Hub, cfg cliparse.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusMethodNotAllowed, r.Method+" not supported on "+r.URL.Path)
	})

	// Initialize handlers
	roomsHandler := handlers.NewRoomsHandler(reg)
	socketHandler := handlers.NewSocketHandler(h, cfg)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	// Read-only room listing
	r.HandleFunc("/rooms", middleware.WithLogging(roomsHandler.ListRooms)).
		Methods(http.MethodGet, http.MethodOptions)

	// Realtime board sync
	r.HandleFunc("/ws", middleware.WithLogging(socketHandler.Connect)).
		Methods(http.MethodGet)

	// Browser client
	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).
			Methods(http.MethodGet, http.MethodHead)
	} else {
		r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("retroboard API v1"))
		}).Methods(http.MethodGet)
	}

	return r
}
