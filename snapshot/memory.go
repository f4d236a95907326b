// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package snapshot

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process memory. Used for ephemeral
// servers and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	data  []byte
	saves int
	err   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored document
func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return nil, ErrNotFound
	}
	result := make([]byte, len(m.data))
	copy(result, m.data)
	return result, nil
}

// Save stores a copy of data, or returns the error set with FailWith
func (m *MemoryStore) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data = stored
	m.saves++
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Saves returns the number of successful saves
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// FailWith makes every later Save return err. A nil err restores normal
// behavior.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
