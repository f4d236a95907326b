// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/danielhkuo/retroboard/auth"
	"github.com/danielhkuo/retroboard/board"
	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/quota"
)

// DefaultQueueSize is the number of outbound frames buffered per peer
// before it is treated as a slow consumer and dropped.
const DefaultQueueSize = models.DefaultQueueSize

var ErrHubClosed = errors.New("hub closed")

// Peer is one admitted connection. Outbound frames are queued on a bounded
// channel; the transport drains it.
type Peer struct {
	session *auth.Session
	out     chan []byte
	done    chan struct{}
	once    sync.Once
}

func newPeer(session *auth.Session, queueSize int) *Peer {
	return &Peer{
		session: session,
		out:     make(chan []byte, queueSize),
		done:    make(chan struct{}),
	}
}

func (p *Peer) Session() *auth.Session { return p.session }

// Outbound delivers frames in the order they were queued.
func (p *Peer) Outbound() <-chan []byte { return p.out }

// Done is closed when the peer has been removed from its room.
func (p *Peer) Done() <-chan struct{} { return p.done }

func (p *Peer) enqueue(frame []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.out <- frame:
		return true
	default:
		return false
	}
}

func (p *Peer) close() {
	p.once.Do(func() { close(p.done) })
}

// Hub groups peers by room and applies their commands.
type Hub struct {
	auth *auth.Authenticator

	mu        sync.RWMutex
	rooms     map[string]map[*Peer]struct{}
	queueSize int
	closed    bool
}

func New(authenticator *auth.Authenticator) *Hub {
	return &Hub{
		auth:      authenticator,
		queueSize: DefaultQueueSize,
		rooms:     make(map[string]map[*Peer]struct{}),
	}
}

// SetQueueSize changes the outbound buffer for peers admitted afterwards.
func (h *Hub) SetQueueSize(n int) {
	if n < 1 {
		return
	}
	h.mu.Lock()
	h.queueSize = n
	h.mu.Unlock()
}

// Admit authenticates a handshake, queues the init snapshot for the new
// peer alone and joins it to the room's broadcast group. Both happen under
// the room lock, so the peer sees every later mutation exactly once.
func (h *Hub) Admit(ctx context.Context, hs models.Handshake) (*Peer, error) {
	h.mu.RLock()
	closed, queueSize := h.closed, h.queueSize
	h.mu.RUnlock()
	if closed {
		return nil, ErrHubClosed
	}

	session, err := h.auth.Admit(ctx, hs)
	if err != nil {
		return nil, err
	}

	peer := newPeer(session, queueSize)
	var joinErr error
	session.Room.View(func(b *board.Board, _ *quota.Tracker) {
		frame, err := models.EncodeEvent(models.EventInit, b.State())
		if err != nil {
			joinErr = err
			return
		}
		peer.enqueue(frame)
		joinErr = h.join(peer)
	})
	if joinErr != nil {
		peer.close()
		return nil, joinErr
	}
	return peer, nil
}

func (h *Hub) join(p *Peer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	roomID := p.session.RoomID
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Peer]struct{})
	}
	h.rooms[roomID][p] = struct{}{}
	return nil
}

// Leave removes the peer from its room and closes it. Safe to call more
// than once.
func (h *Hub) Leave(p *Peer) {
	h.mu.Lock()
	roomID := p.session.RoomID
	if members, ok := h.rooms[roomID]; ok {
		delete(members, p)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()
	p.close()
}

// Members returns the number of peers connected to roomID.
func (h *Hub) Members(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Close disconnects every peer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var peers []*Peer
	for _, members := range h.rooms {
		for p := range members {
			peers = append(peers, p)
		}
	}
	h.rooms = make(map[string]map[*Peer]struct{})
	h.mu.Unlock()

	for _, p := range peers {
		p.close()
	}
	slog.Info("hub closed", "peers", len(peers))
}

// broadcast queues frame for every peer in roomID. Peers whose queue is
// full are dropped.
func (h *Hub) broadcast(roomID string, frame []byte) {
	if frame == nil {
		return
	}
	h.mu.RLock()
	members := make([]*Peer, 0, len(h.rooms[roomID]))
	for p := range h.rooms[roomID] {
		members = append(members, p)
	}
	h.mu.RUnlock()

	for _, p := range members {
		if !p.enqueue(frame) {
			slog.Warn("dropping slow peer", "room_id", roomID, "session_id", p.session.ID, "username", p.session.Username)
			h.Leave(p)
		}
	}
}

// reply queues frame for p alone.
func (h *Hub) reply(p *Peer, frame []byte) {
	if frame == nil {
		return
	}
	if !p.enqueue(frame) {
		h.Leave(p)
	}
}

func encode(event string, payload any) []byte {
	frame, err := models.EncodeEvent(event, payload)
	if err != nil {
		slog.Error("failed to encode event", "event", event, "error", err)
		return nil
	}
	return frame
}
