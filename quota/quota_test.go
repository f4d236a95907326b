// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quota

import (
	"errors"
	"testing"
)

func TestTryConsume(t *testing.T) {
	tr := NewTracker(3)

	for i := 1; i <= 3; i++ {
		if !tr.TryConsume("bob") {
			t.Fatalf("vote %d should be allowed", i)
		}
		if tr.Used("bob") != i {
			t.Errorf("Used() = %d, want %d", tr.Used("bob"), i)
		}
	}

	if tr.TryConsume("bob") {
		t.Error("4th vote should be denied")
	}
	if tr.Used("bob") != 3 {
		t.Errorf("denied vote must not change usage, got %d", tr.Used("bob"))
	}
	if tr.Remaining("bob") != 0 {
		t.Errorf("Remaining() = %d, want 0", tr.Remaining("bob"))
	}

	// Identities are independent
	if !tr.TryConsume("alice") {
		t.Error("alice should still have quota")
	}
	if tr.Remaining("alice") != 2 {
		t.Errorf("Remaining(alice) = %d, want 2", tr.Remaining("alice"))
	}
}

func TestFromLedger(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		ledger    map[string]int
		wantErr   bool
		remaining map[string]int
	}{
		{"nil ledger", 3, nil, false, map[string]int{"bob": 3}},
		{"partial usage", 3, map[string]int{"bob": 2}, false, map[string]int{"bob": 1, "alice": 3}},
		{"over limit after limit lowered", 2, map[string]int{"bob": 3}, false, map[string]int{"bob": 0}},
		{"negative usage", 3, map[string]int{"bob": -1}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := FromLedger(tt.limit, tt.ledger)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLedger) {
					t.Fatalf("FromLedger() error = %v, want ErrInvalidLedger", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromLedger() error = %v", err)
			}
			for identity, want := range tt.remaining {
				if got := tr.Remaining(identity); got != want {
					t.Errorf("Remaining(%s) = %d, want %d", identity, got, want)
				}
			}
		})
	}
}

func TestLedger_IsACopy(t *testing.T) {
	tr := NewTracker(3)
	tr.TryConsume("bob")

	ledger := tr.Ledger()
	ledger["bob"] = 0
	ledger["eve"] = 5

	if tr.Used("bob") != 1 || tr.Used("eve") != 0 {
		t.Error("mutating the returned ledger must not affect the tracker")
	}
}
