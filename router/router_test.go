// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/danielhkuo/retroboard/auth"
	"github.com/danielhkuo/retroboard/cliparse"
	"github.com/danielhkuo/retroboard/hub"
	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/registry"
	"github.com/danielhkuo/retroboard/testutil"
)

func newTestRouter(t *testing.T, cfg cliparse.Config) (*mux.Router, *registry.Registry) {
	t.Helper()

	reg, _ := testutil.SetupTestRegistry(t)
	h := hub.New(auth.NewAuthenticator(reg))
	t.Cleanup(h.Close)
	return NewRouter(reg, h, cfg), reg
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "retroboard API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRoomsEndpoint(t *testing.T) {
	r, reg := newTestRouter(t, testutil.GetTestConfig())
	reg.GetOrCreate(context.Background(), "R1", "p1")

	req := httptest.NewRequest("GET", "/rooms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.RoomsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Rooms) != 1 || resp.Rooms[0] != "R1" {
		t.Errorf("Expected [R1], got %v", resp.Rooms)
	}
}

func TestRouteMethods(t *testing.T) {
	r, _ := newTestRouter(t, testutil.GetTestConfig())

	testCases := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/rooms", http.StatusOK},
		{"OPTIONS", "/rooms", http.StatusNoContent},
		{"POST", "/rooms", http.StatusMethodNotAllowed},
		{"DELETE", "/rooms", http.StatusMethodNotAllowed},
		{"POST", "/ws", http.StatusMethodNotAllowed},
		{"GET", "/nonexistent", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
		})
	}
}

func TestUnmatchedRoutesReturnJSON(t *testing.T) {
	r, _ := newTestRouter(t, testutil.GetTestConfig())

	testCases := []struct {
		method  string
		path    string
		status  int
		message string
	}{
		{"GET", "/nonexistent", http.StatusNotFound, "no route for /nonexistent"},
		{"POST", "/rooms", http.StatusMethodNotAllowed, "POST not supported on /rooms"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			testutil.AssertStatus(t, w, tc.status)
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}
			var body models.ErrorResponse
			testutil.AssertJSON(t, w, &body)
			if body.Error != http.StatusText(tc.status) {
				t.Errorf("Expected error %q, got %q", http.StatusText(tc.status), body.Error)
			}
			if body.Message != tc.message {
				t.Errorf("Expected message %q, got %q", tc.message, body.Message)
			}
		})
	}
}

func TestWebsocketRoute(t *testing.T) {
	r, reg := newTestRouter(t, testutil.GetTestConfig())
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, state := testutil.Join(t, srv.URL, "/ws", testutil.Handshake("R1", "p1", "alice"))
	if len(state.Columns) != 3 {
		t.Errorf("Expected 3 columns, got %d", len(state.Columns))
	}
	if _, ok := reg.Lookup("R1"); !ok {
		t.Error("Expected room to be created by the handshake")
	}

	// A plain GET without upgrade headers is refused by the upgrader
	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-websocket request, got %d", resp.StatusCode)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>retro</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testutil.GetTestConfig()
	cfg.StaticDir = dir
	r, _ := newTestRouter(t, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Body.String() != "<h1>retro</h1>" {
		t.Errorf("Expected index.html, got %q", w.Body.String())
	}

	// API routes still win over the static prefix
	req = httptest.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "OK" {
		t.Errorf("Expected health response, got %q", w.Body.String())
	}
}
