// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/retroboard/board"
	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/quota"
	"github.com/danielhkuo/retroboard/snapshot"
)

var (
	ErrInvalidCredential    = errors.New("invalid room or password")
	ErrClosed               = errors.New("registry closed")
	ErrIncompatibleSnapshot = errors.New("snapshot does not match board configuration")
)

type Options struct {
	Columns  []string
	MaxVotes int
}

func (o Options) withDefaults() Options {
	if len(o.Columns) == 0 {
		o.Columns = models.DefaultColumns
	}
	if o.MaxVotes <= 0 {
		o.MaxVotes = models.DefaultMaxVotes
	}
	return o
}

// Registry owns every room for the lifetime of the process and writes a
// full snapshot of all rooms after each mutation.
type Registry struct {
	opts  Options
	store snapshot.Store

	mu    sync.RWMutex
	rooms map[string]*Room

	// writeMu guards written and store writes. Lock order is room.mu then
	// writeMu, never the reverse. written holds the last recorded state of
	// each room; a room's entry only changes while its lock is held.
	writeMu sync.Mutex
	written models.RegistrySnapshot
	closed  bool
}

// Open rehydrates a registry from store. A missing or unparseable snapshot
// yields an empty registry. A store that cannot be read, or a snapshot
// whose rooms do not fit opts (unknown columns, duplicate cards, missing
// passwords), is an error and the stored document is left untouched.
func Open(ctx context.Context, store snapshot.Store, opts Options) (*Registry, error) {
	r := &Registry{
		opts:    opts.withDefaults(),
		store:   store,
		rooms:   make(map[string]*Room),
		written: make(models.RegistrySnapshot),
	}

	data, err := store.Load(ctx)
	if errors.Is(err, snapshot.ErrNotFound) {
		slog.Info("no snapshot found, starting empty")
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap, err := Decode(data)
	if err != nil {
		slog.Warn("snapshot is malformed, starting empty", "error", err)
		return r, nil
	}

	// A readable document that does not fit the configuration must not be
	// overwritten by the next save.
	cards, err := r.restore(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompatibleSnapshot, err)
	}

	slog.Info("snapshot restored", "rooms", len(r.rooms), "cards", cards, "size", humanize.Bytes(uint64(len(data))))
	return r, nil
}

// restore rebuilds every room from snap and returns the number of cards.
// Nothing is kept when any room is invalid.
func (r *Registry) restore(snap models.RegistrySnapshot) (int, error) {
	rooms := make(map[string]*Room, len(snap))
	cards := 0
	for id, rs := range snap {
		if id == "" {
			return 0, errors.New("room with empty id")
		}
		if rs.Password == "" {
			return 0, fmt.Errorf("room %q has no password", id)
		}
		b, err := board.FromState(r.opts.Columns, rs.Board)
		if err != nil {
			return 0, fmt.Errorf("room %q: %w", id, err)
		}
		votes, err := quota.FromLedger(r.opts.MaxVotes, rs.VotesByUser)
		if err != nil {
			return 0, fmt.Errorf("room %q: %w", id, err)
		}
		rooms[id] = &Room{id: id, credential: rs.Password, board: b, votes: votes, reg: r}
		cards += b.CardCount()
	}

	for id, room := range rooms {
		r.rooms[id] = room
		r.written[id] = room.snapshotLocked()
	}
	return cards, nil
}

// GetOrCreate returns the room with roomID, creating it with credential
// and an empty board when unknown. An existing room's credential is never
// replaced.
func (r *Registry) GetOrCreate(ctx context.Context, roomID, credential string) *Room {
	if room, ok := r.Lookup(roomID); ok {
		return room
	}

	r.mu.Lock()
	if room, ok := r.rooms[roomID]; ok {
		r.mu.Unlock()
		return room
	}
	room := &Room{
		id:         roomID,
		credential: credential,
		board:      board.New(r.opts.Columns),
		votes:      quota.NewTracker(r.opts.MaxVotes),
		reg:        r,
	}
	r.rooms[roomID] = room
	r.mu.Unlock()

	slog.Info("room created", "room_id", roomID)

	room.mu.Lock()
	r.persistLocked(ctx, room)
	room.mu.Unlock()

	return room
}

// Authenticate provisions unknown rooms on first contact, then checks
// credential against the room's stored one.
func (r *Registry) Authenticate(ctx context.Context, roomID, credential string) (*Room, error) {
	room := r.GetOrCreate(ctx, roomID, credential)
	if !room.checkCredential(credential) {
		return nil, ErrInvalidCredential
	}
	return room, nil
}

// Lookup returns an existing room without creating one.
func (r *Registry) Lookup(roomID string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

// ListRoomIDs returns all known room ids, sorted.
func (r *Registry) ListRoomIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Close flushes the latest state of every room and closes the store.
// Every mutation already recorded its room in the pending document, so
// the flush also retries any write that failed earlier. Later mutations
// still apply in memory but are no longer persisted.
func (r *Registry) Close(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true

	var errs []error
	if err := r.writeLocked(ctx); err != nil {
		errs = append(errs, fmt.Errorf("final snapshot write failed: %w", err))
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close snapshot store: %w", err))
	}
	return errors.Join(errs...)
}

// persistLocked records room's current state and writes the full registry
// document. The caller holds room.mu. Failures are logged; in-memory state
// stays authoritative.
func (r *Registry) persistLocked(ctx context.Context, room *Room) {
	rs := room.snapshotLocked()

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if r.closed {
		return
	}
	r.written[room.id] = rs
	if err := r.writeLocked(ctx); err != nil {
		slog.Error("snapshot write failed", "room_id", room.id, "error", err)
	}
}

// writeLocked serializes r.written to the store. The caller holds writeMu.
func (r *Registry) writeLocked(ctx context.Context) error {
	data, err := Encode(r.written)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, data); err != nil {
		return err
	}
	slog.Debug("snapshot written", "rooms", len(r.written), "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// Room is one board, its vote ledger and its password. All access to the
// board and ledger goes through Apply or View, which hold the room lock.
type Room struct {
	id         string
	credential string
	reg        *Registry

	mu    sync.Mutex
	board *board.Board
	votes *quota.Tracker
}

func (rm *Room) ID() string { return rm.id }

func (rm *Room) checkCredential(credential string) bool {
	return hmac.Equal([]byte(credential), []byte(rm.credential))
}

// Apply runs fn with exclusive access to the room. When fn returns a
// non-nil commit the room has changed: the registry snapshot is written
// and commit runs afterwards, still under the room lock, so anything it
// publishes is ordered with every other mutation of this room.
func (rm *Room) Apply(ctx context.Context, fn func(b *board.Board, votes *quota.Tracker) (commit func())) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	commit := fn(rm.board, rm.votes)
	if commit == nil {
		return
	}
	rm.reg.persistLocked(ctx, rm)
	commit()
}

// View runs fn with exclusive access to the room without persisting.
// fn must not mutate the board or ledger.
func (rm *Room) View(fn func(b *board.Board, votes *quota.Tracker)) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	fn(rm.board, rm.votes)
}

func (rm *Room) snapshotLocked() models.RoomSnapshot {
	return models.RoomSnapshot{
		Password:    rm.credential,
		Board:       rm.board.State(),
		VotesByUser: rm.votes.Ledger(),
	}
}
