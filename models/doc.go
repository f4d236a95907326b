// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, wire, and snapshot types shared across the server.

# Domain Types

  - Card: id, text, votes, author
  - BoardState: column id → ordered cards

# Wire Protocol

Every websocket frame is an Envelope:

	{"event": "cardAdded", "data": {...}}

Client → server:

	auth      Handshake{roomId, password, username} (first frame only)
	addCard   AddCardCommand{column, card{id, text}}
	voteCard  VoteCardCommand{column, cardId}
	moveCard  MoveCardCommand{cardId, fromColumn, toColumn, newIndex}

Server → client:

	init       BoardState
	cardAdded  CardAddedEvent
	cardVoted  CardVotedEvent
	cardMoved  CardMovedEvent
	voteDenied (no data)
	error      ErrorEvent{message}

DecodeCommand turns a client frame into one of the Command variants and
rejects frames that are missing the ids the command needs.

# Snapshot Types

The persisted registry document:

	{"<roomId>": {"password": "...", "board": {"columns": {...}}, "votesByUser": {"alice": 2}}}

# Constants

Columns:

	ColumnGood   = "good"
	ColumnBad    = "bad"
	ColumnAction = "action"

Quota:

	DefaultMaxVotes = 3
*/
package models
