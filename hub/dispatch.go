// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/retroboard/board"
	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/quota"
)

// Handle applies one command from p. Commands referring to cards or
// columns that no longer match the board are stale and dropped without a
// broadcast.
func (h *Hub) Handle(ctx context.Context, p *Peer, cmd models.Command) {
	switch c := cmd.(type) {
	case models.AddCardCommand:
		h.addCard(ctx, p, c)
	case models.VoteCardCommand:
		h.voteCard(ctx, p, c)
	case models.MoveCardCommand:
		h.moveCard(ctx, p, c)
	default:
		slog.Warn("unhandled command", "command", cmd.CommandName(), "session_id", p.session.ID)
	}
}

func (h *Hub) addCard(ctx context.Context, p *Peer, c models.AddCardCommand) {
	s := p.session
	s.Room.Apply(ctx, func(b *board.Board, _ *quota.Tracker) func() {
		card, err := b.AddCard(c.Column, c.Card, s.Username)
		if err != nil {
			slog.Warn("add card rejected", "room_id", s.RoomID, "username", s.Username, "error", err)
			return nil
		}
		frame := encode(models.EventCardAdded, models.CardAddedEvent{Column: c.Column, Card: card})
		return func() {
			slog.Debug("card added", "room_id", s.RoomID, "card_id", card.ID, "column", c.Column)
			h.broadcast(s.RoomID, frame)
		}
	})
}

func (h *Hub) voteCard(ctx context.Context, p *Peer, c models.VoteCardCommand) {
	s := p.session
	denied := false
	var used, limit int
	s.Room.Apply(ctx, func(b *board.Board, votes *quota.Tracker) func() {
		if _, ok := b.Lookup(c.Column, c.CardID); !ok {
			slog.Debug("stale vote ignored", "room_id", s.RoomID, "card_id", c.CardID)
			return nil
		}
		if !votes.TryConsume(s.Username) {
			denied = true
			used, limit = votes.Used(s.Username), votes.Limit()
			return nil
		}
		total, _ := b.IncrementVote(c.Column, c.CardID)
		remaining := votes.Remaining(s.Username)
		frame := encode(models.EventCardVoted, models.CardVotedEvent{Column: c.Column, CardID: c.CardID, Votes: total})
		return func() {
			slog.Debug("card voted", "room_id", s.RoomID, "card_id", c.CardID, "votes", total, "remaining", remaining)
			h.broadcast(s.RoomID, frame)
		}
	})

	if denied {
		slog.Info("vote denied", "room_id", s.RoomID, "username", s.Username, "used", used, "limit", limit)
		h.reply(p, encode(models.EventVoteDenied, nil))
	}
}

func (h *Hub) moveCard(ctx context.Context, p *Peer, c models.MoveCardCommand) {
	s := p.session
	s.Room.Apply(ctx, func(b *board.Board, _ *quota.Tracker) func() {
		index, ok := b.MoveCard(c.CardID, c.FromColumn, c.ToColumn, c.NewIndex)
		if !ok {
			slog.Debug("stale move ignored", "room_id", s.RoomID, "card_id", c.CardID, "from", c.FromColumn)
			return nil
		}
		frame := encode(models.EventCardMoved, models.CardMovedEvent{
			CardID:     c.CardID,
			FromColumn: c.FromColumn,
			ToColumn:   c.ToColumn,
			NewIndex:   index,
		})
		return func() {
			h.broadcast(s.RoomID, frame)
		}
	})
}
