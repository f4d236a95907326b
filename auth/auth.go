// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/registry"
)

var (
	ErrMissingField = errors.New("missing handshake field")

	// ErrInvalidCredential is the registry's credential mismatch error
	ErrInvalidCredential = registry.ErrInvalidCredential
)

// Rejection reasons shown to clients
const (
	ReasonAuthentication     = "Authentication error"
	ReasonInvalidCredentials = "Invalid room or password"
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Session binds one live connection to one room and display identity.
type Session struct {
	ID       string
	RoomID   string
	Username string
	Room     *registry.Room
}

// Authenticator admits connections into rooms.
type Authenticator struct {
	rooms *registry.Registry
}

func NewAuthenticator(rooms *registry.Registry) *Authenticator {
	return &Authenticator{rooms: rooms}
}

// ValidateHandshake checks that all three handshake fields are present
func ValidateHandshake(hs models.Handshake) error {
	switch {
	case hs.RoomID == "":
		return fmt.Errorf("%w: roomId", ErrMissingField)
	case hs.Password == "":
		return fmt.Errorf("%w: password", ErrMissingField)
	case hs.Username == "":
		return fmt.Errorf("%w: username", ErrMissingField)
	}
	return nil
}

// Admit validates the handshake and authenticates against the registry,
// creating the room if it does not exist yet. Nothing is mutated when the
// handshake is incomplete.
func (a *Authenticator) Admit(ctx context.Context, hs models.Handshake) (*Session, error) {
	if err := ValidateHandshake(hs); err != nil {
		return nil, err
	}

	room, err := a.rooms.Authenticate(ctx, hs.RoomID, hs.Password)
	if err != nil {
		return nil, err
	}

	id, err := GenerateID(8)
	if err != nil {
		return nil, err
	}

	slog.Info("session admitted", "session_id", id, "room_id", hs.RoomID, "username", hs.Username)
	return &Session{
		ID:       id,
		RoomID:   hs.RoomID,
		Username: hs.Username,
		Room:     room,
	}, nil
}

// Reason maps an admission error to the message sent to the client
func Reason(err error) string {
	if errors.Is(err, ErrInvalidCredential) {
		return ReasonInvalidCredentials
	}
	return ReasonAuthentication
}
