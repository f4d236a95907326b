// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth admits connections into rooms.

# Handshake

A client proves it knows a room's password by sending:

	{"roomId": "R1", "password": "p1", "username": "alice"}

All three fields are required:

	session, err := authenticator.Admit(ctx, hs)

Admit returns ErrMissingField for an incomplete handshake and
ErrInvalidCredential when the password does not match an existing room.
Unknown rooms are created on first contact with the supplied password.

# Rejection Reasons

Reason turns an admission error into the client-facing message:

  - ErrInvalidCredential → "Invalid room or password"
  - anything else        → "Authentication error"

# Sessions

A Session carries the room handle and display identity for the lifetime
of one connection. Display identities are not unique; two connections
with the same username in one room share a vote quota.

# ID Generation

Random hex IDs for sessions:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
