// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package board implements the ordered columns of one room's board: adding
// cards, moving them between and within columns, and counting votes.
package board
