// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/retroboard/board"
	"github.com/danielhkuo/retroboard/cliparse"
	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/quota"
	"github.com/danielhkuo/retroboard/registry"
	"github.com/danielhkuo/retroboard/snapshot"
)

// EventTimeout bounds how long helpers wait for a frame
const EventTimeout = 2 * time.Second

// SetupTestRegistry creates an empty registry backed by a memory store
func SetupTestRegistry(t *testing.T) (*registry.Registry, *snapshot.MemoryStore) {
	t.Helper()

	store := snapshot.NewMemoryStore()
	reg, err := registry.Open(context.Background(), store, registry.Options{})
	if err != nil {
		t.Fatalf("Failed to open test registry: %v", err)
	}
	return reg, store
}

// RoomState reads a live room's board and vote ledger
func RoomState(t *testing.T, reg *registry.Registry, roomID string) models.RoomSnapshot {
	t.Helper()

	room, ok := reg.Lookup(roomID)
	if !ok {
		t.Fatalf("Room %s not found", roomID)
	}
	var snap models.RoomSnapshot
	room.View(func(b *board.Board, votes *quota.Tracker) {
		snap.Board = b.State()
		snap.VotesByUser = votes.Ledger()
	})
	return snap
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.Store = cliparse.StoreMemory
	cfg.StaticDir = ""
	return cfg
}

func Handshake(roomID, password, username string) models.Handshake {
	return models.Handshake{RoomID: roomID, Password: password, Username: username}
}

// NextFrame waits for the next frame on ch and decodes its envelope
func NextFrame(t *testing.T, ch <-chan []byte) models.Envelope {
	t.Helper()

	select {
	case frame := <-ch:
		var env models.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("Failed to decode frame %s: %v", frame, err)
		}
		return env
	case <-time.After(EventTimeout):
		t.Fatal("Timed out waiting for frame")
	}
	return models.Envelope{}
}

// AssertNoFrame checks that nothing is queued on ch
func AssertNoFrame(t *testing.T, ch <-chan []byte) {
	t.Helper()

	select {
	case frame := <-ch:
		t.Errorf("Expected no frame, got %s", frame)
	default:
	}
}

// DecodeData unmarshals an envelope's payload into v
func DecodeData(t *testing.T, env models.Envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", env.Event, err)
	}
}

// DialWS opens a websocket to an httptest server path
func DialWS(t *testing.T, serverURL, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(serverURL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// SendEvent writes an envelope with the given payload
func SendEvent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()

	frame, err := models.EncodeEvent(event, payload)
	if err != nil {
		t.Fatalf("Failed to encode %s: %v", event, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// ReadEvent reads the next envelope from conn
func ReadEvent(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(EventTimeout))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	var env models.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("Failed to decode frame %s: %v", frame, err)
	}
	return env
}

// Join dials path, authenticates and consumes the init event
func Join(t *testing.T, serverURL, path string, hs models.Handshake) (*websocket.Conn, models.BoardState) {
	t.Helper()

	conn := DialWS(t, serverURL, path)
	SendEvent(t, conn, models.EventAuth, hs)

	env := ReadEvent(t, conn)
	if env.Event != models.EventInit {
		t.Fatalf("Expected init, got %s %s", env.Event, env.Data)
	}
	var state models.BoardState
	DecodeData(t, env, &state)
	return conn, state
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
