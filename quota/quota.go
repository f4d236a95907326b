// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quota

import (
	"errors"
	"fmt"
)

var ErrInvalidLedger = errors.New("invalid vote ledger")

// Tracker counts votes cast per identity against a fixed limit. Votes are
// never returned. Not safe for concurrent use; the owning room serializes
// access.
type Tracker struct {
	limit int
	used  map[string]int
}

func NewTracker(limit int) *Tracker {
	return &Tracker{limit: limit, used: make(map[string]int)}
}

// FromLedger restores a tracker from persisted usage counts.
func FromLedger(limit int, ledger map[string]int) (*Tracker, error) {
	t := NewTracker(limit)
	for identity, n := range ledger {
		if n < 0 {
			return nil, fmt.Errorf("%w: %q has %d votes", ErrInvalidLedger, identity, n)
		}
		if n > 0 {
			t.used[identity] = n
		}
	}
	return t, nil
}

func (t *Tracker) Limit() int { return t.limit }

func (t *Tracker) Used(identity string) int { return t.used[identity] }

// Remaining never goes below zero, even for ledgers restored under a
// higher limit.
func (t *Tracker) Remaining(identity string) int {
	if r := t.limit - t.used[identity]; r > 0 {
		return r
	}
	return 0
}

// TryConsume records one vote for identity if it has quota left and
// reports whether it did.
func (t *Tracker) TryConsume(identity string) bool {
	if t.used[identity] >= t.limit {
		return false
	}
	t.used[identity]++
	return true
}

// Ledger returns a copy of the usage counts.
func (t *Tracker) Ledger() map[string]int {
	out := make(map[string]int, len(t.used))
	for identity, n := range t.used {
		out[identity] = n
	}
	return out
}
