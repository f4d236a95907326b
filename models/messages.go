// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMalformedCommand = errors.New("malformed command")
)

// Client -> server event names
const (
	EventAuth     = "auth"
	EventAddCard  = "addCard"
	EventVoteCard = "voteCard"
	EventMoveCard = "moveCard"
)

// Server -> client event names
const (
	EventInit       = "init"
	EventCardAdded  = "cardAdded"
	EventCardVoted  = "cardVoted"
	EventCardMoved  = "cardMoved"
	EventVoteDenied = "voteDenied"
	EventError      = "error"
)

// Envelope is the frame carried over the websocket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handshake is the first frame a client sends after connecting.
type Handshake struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// Commands

// Command is one of AddCardCommand, VoteCardCommand or MoveCardCommand.
type Command interface {
	CommandName() string
}

type CardDraft struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type AddCardCommand struct {
	Column string    `json:"column"`
	Card   CardDraft `json:"card"`
}

type VoteCardCommand struct {
	Column string `json:"column"`
	CardID string `json:"cardId"`
}

type MoveCardCommand struct {
	CardID     string `json:"cardId"`
	FromColumn string `json:"fromColumn"`
	ToColumn   string `json:"toColumn"`
	NewIndex   int    `json:"newIndex"`
}

func (AddCardCommand) CommandName() string  { return EventAddCard }
func (VoteCardCommand) CommandName() string { return EventVoteCard }
func (MoveCardCommand) CommandName() string { return EventMoveCard }

// Events

type CardAddedEvent struct {
	Column string `json:"column"`
	Card   Card   `json:"card"`
}

type CardVotedEvent struct {
	Column string `json:"column"`
	CardID string `json:"cardId"`
	Votes  int    `json:"votes"`
}

type CardMovedEvent struct {
	CardID     string `json:"cardId"`
	FromColumn string `json:"fromColumn"`
	ToColumn   string `json:"toColumn"`
	NewIndex   int    `json:"newIndex"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// DecodeHandshake parses an auth frame. Field presence is not checked here.
func DecodeHandshake(frame []byte) (Handshake, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Handshake{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if env.Event != EventAuth {
		return Handshake{}, fmt.Errorf("%w: expected %q, got %q", ErrUnknownCommand, EventAuth, env.Event)
	}

	var hs Handshake
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &hs); err != nil {
			return Handshake{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
	}
	return hs, nil
}

// DecodeCommand parses a client frame into its tagged command type and
// checks that every identifier the command refers to is present.
func DecodeCommand(frame []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	switch env.Event {
	case EventAddCard:
		var cmd AddCardCommand
		if err := decodeData(env, &cmd); err != nil {
			return nil, err
		}
		if cmd.Column == "" {
			return nil, fmt.Errorf("%w: %s requires column", ErrMalformedCommand, env.Event)
		}
		return cmd, nil

	case EventVoteCard:
		var cmd VoteCardCommand
		if err := decodeData(env, &cmd); err != nil {
			return nil, err
		}
		if cmd.Column == "" || cmd.CardID == "" {
			return nil, fmt.Errorf("%w: %s requires column and cardId", ErrMalformedCommand, env.Event)
		}
		return cmd, nil

	case EventMoveCard:
		var cmd MoveCardCommand
		if err := decodeData(env, &cmd); err != nil {
			return nil, err
		}
		if cmd.CardID == "" || cmd.FromColumn == "" || cmd.ToColumn == "" {
			return nil, fmt.Errorf("%w: %s requires cardId, fromColumn and toColumn", ErrMalformedCommand, env.Event)
		}
		return cmd, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Event)
}

func decodeData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrMalformedCommand, env.Event)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedCommand, env.Event, err)
	}
	return nil
}

// EncodeEvent builds a server frame. A nil payload produces a frame
// without data.
func EncodeEvent(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}
