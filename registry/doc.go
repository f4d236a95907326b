// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registry owns every room: its password, board and vote ledger.

# Lifecycle

	reg, err := registry.Open(ctx, store, registry.Options{MaxVotes: 3})
	defer reg.Close(ctx)

Open rehydrates from the store's last snapshot. A missing or malformed
snapshot starts an empty registry; a store read error fails Open so a
reachable-but-broken backend is never overwritten with an empty document.
Close flushes the latest state and closes the store.

# Rooms

Rooms self-provision on first contact:

	room, err := reg.Authenticate(ctx, "R1", "p1")

The first credential seen for a room id becomes its password. Later calls
compare against it and fail with ErrInvalidCredential on mismatch.

# Locking

Each Room has its own mutex. Room.Apply runs a mutation under it, writes
the snapshot, then runs the commit callback (the broadcast) before
releasing it, so commands for one room apply and publish in arrival order.
Different rooms never contend.

# Persistence

After every mutation the full registry document is rewritten:

	{"R1": {"password": "p1", "board": {"columns": {...}}, "votesByUser": {"bob": 3}}}

Write failures are logged and do not undo the mutation.
*/
package registry
