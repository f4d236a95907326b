// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing has been saved yet
var ErrNotFound = errors.New("snapshot not found")

// Store persists the serialized room registry as a single document.
// Save overwrites the previous document wholesale.
type Store interface {
	// Load returns the last saved document or ErrNotFound
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document
	Save(ctx context.Context, data []byte) error

	// Close releases any connection held by the store
	Close() error
}
