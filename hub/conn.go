// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/retroboard/auth"
	"github.com/danielhkuo/retroboard/models"
)

const (
	// Time allowed for the client to send its auth frame
	handshakeWait = 10 * time.Second

	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from a peer
	maxFrameSize = 64 << 10
)

// ServeConn runs one websocket connection to completion: handshake,
// admission, then the command loop until the client goes away or the hub
// closes. The connection is closed on return.
func (h *Hub) ServeConn(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(handshakeWait))

	_, frame, err := conn.ReadMessage()
	if err != nil {
		slog.Warn("handshake read failed", "remote", conn.RemoteAddr().String(), "error", err)
		conn.Close()
		return
	}

	hs, err := models.DecodeHandshake(frame)
	var peer *Peer
	if err == nil {
		peer, err = h.Admit(ctx, hs)
	}
	if err != nil {
		reason := auth.Reason(err)
		slog.Info("connection rejected", "remote", conn.RemoteAddr().String(), "room_id", hs.RoomID, "reason", reason, "error", err)
		reject(conn, reason)
		return
	}
	slog.Debug("peer joined", "room_id", hs.RoomID, "session_id", peer.session.ID, "peers", h.Members(hs.RoomID))

	go h.writePump(conn, peer)
	h.readPump(ctx, conn, peer)
}

// reject tells the client why it was refused and closes with a policy
// violation.
func reject(conn *websocket.Conn, reason string) {
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if frame := encode(models.EventError, models.ErrorEvent{Message: reason}); frame != nil {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}

// readPump decodes commands until the connection fails, then removes the
// peer from its room.
func (h *Hub) readPump(ctx context.Context, conn *websocket.Conn, p *Peer) {
	defer h.Leave(p)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.Warn("connection closed unexpectedly", "session_id", p.session.ID, "error", err)
			}
			return
		}
		// Any traffic proves the peer is alive
		conn.SetReadDeadline(time.Now().Add(pongWait))

		cmd, err := models.DecodeCommand(frame)
		if err != nil {
			slog.Warn("dropping malformed command", "session_id", p.session.ID, "room_id", p.session.RoomID, "error", err)
			continue
		}
		h.Handle(ctx, p, cmd)
	}
}

// writePump is the only writer on conn after admission. It exits when the
// peer is closed or a write fails, closing the connection either way.
func (h *Hub) writePump(conn *websocket.Conn, p *Peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame := <-p.out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logWriteError(p, err)
				h.Leave(p)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logWriteError(p, err)
				h.Leave(p)
				return
			}
		case <-p.done:
			h.flush(conn, p)
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever is still queued, so a peer closed by the hub
// still receives events applied before it was closed.
func (h *Hub) flush(conn *websocket.Conn, p *Peer) {
	for {
		select {
		case frame := <-p.out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (h *Hub) logWriteError(p *Peer, err error) {
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}
	slog.Warn("write failed", "session_id", p.session.ID, "error", err)
}
