// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package quota enforces the per-identity vote cap within a room.
// TryConsume checks and records in one step, so a caller holding the room
// lock can never let two votes through on the last unit of quota.
package quota
