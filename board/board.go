// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package board

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/retroboard/models"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrEmptyText     = errors.New("card text is empty")
	ErrInvalidBoard  = errors.New("invalid board")
)

// Board holds one room's columns. It is not safe for concurrent use; the
// owning room serializes access.
type Board struct {
	order   []string
	columns map[string][]*models.Card
}

// New creates a board with one empty column per id.
func New(columnIDs []string) *Board {
	b := &Board{
		order:   append([]string(nil), columnIDs...),
		columns: make(map[string][]*models.Card, len(columnIDs)),
	}
	for _, id := range columnIDs {
		b.columns[id] = []*models.Card{}
	}
	return b
}

// FromState rebuilds a board from its wire shape. Columns missing from
// state start empty; columns not in columnIDs, duplicate card ids, empty
// card ids and negative vote counts make the state invalid.
func FromState(columnIDs []string, state models.BoardState) (*Board, error) {
	b := New(columnIDs)
	for id, cards := range state.Columns {
		if !b.HasColumn(id) {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidBoard, ErrUnknownColumn, id)
		}
		for _, c := range cards {
			card := c
			b.columns[id] = append(b.columns[id], &card)
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) HasColumn(columnID string) bool {
	_, ok := b.columns[columnID]
	return ok
}

// Contains reports whether any column holds cardID.
func (b *Board) Contains(cardID string) bool {
	for _, cards := range b.columns {
		if indexOf(cards, cardID) >= 0 {
			return true
		}
	}
	return false
}

// CardCount returns the number of cards across all columns.
func (b *Board) CardCount() int {
	n := 0
	for _, cards := range b.columns {
		n += len(cards)
	}
	return n
}

// AddCard appends a new card to the end of columnID. Any non-empty text is
// accepted as written. The draft id is kept
// when it is non-empty and not already on the board; otherwise a fresh id
// is generated.
func (b *Board) AddCard(columnID string, draft models.CardDraft, author string) (models.Card, error) {
	if !b.HasColumn(columnID) {
		return models.Card{}, fmt.Errorf("%w %q", ErrUnknownColumn, columnID)
	}
	if draft.Text == "" {
		return models.Card{}, ErrEmptyText
	}

	id := draft.ID
	if id == "" || b.Contains(id) {
		id = uuid.NewString()
	}

	card := &models.Card{
		ID:     id,
		Text:   draft.Text,
		Votes:  0,
		Author: author,
	}
	b.columns[columnID] = append(b.columns[columnID], card)
	return *card, nil
}

// MoveCard relocates cardID from fromColumn to toColumn at newIndex. The
// index is clamped into the target column, so anything past the end
// appends and anything negative inserts at the top; negative indexes never
// count back from the end. It returns the index
// the card landed at, or false when the card is not in fromColumn or either
// column is unknown, in which case nothing changes.
func (b *Board) MoveCard(cardID, fromColumn, toColumn string, newIndex int) (int, bool) {
	if !b.HasColumn(fromColumn) || !b.HasColumn(toColumn) {
		return 0, false
	}
	from := b.columns[fromColumn]
	idx := indexOf(from, cardID)
	if idx < 0 {
		return 0, false
	}

	card := from[idx]
	b.columns[fromColumn] = append(from[:idx:idx], from[idx+1:]...)

	to := b.columns[toColumn]
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(to) {
		newIndex = len(to)
	}
	inserted := make([]*models.Card, 0, len(to)+1)
	inserted = append(inserted, to[:newIndex]...)
	inserted = append(inserted, card)
	inserted = append(inserted, to[newIndex:]...)
	b.columns[toColumn] = inserted

	return newIndex, true
}

// IncrementVote adds one vote to cardID in columnID and returns the new
// total, or false when the card is not there.
func (b *Board) IncrementVote(columnID, cardID string) (int, bool) {
	card, ok := b.find(columnID, cardID)
	if !ok {
		return 0, false
	}
	card.Votes++
	return card.Votes, true
}

// Lookup returns a copy of cardID in columnID.
func (b *Board) Lookup(columnID, cardID string) (models.Card, bool) {
	card, ok := b.find(columnID, cardID)
	if !ok {
		return models.Card{}, false
	}
	return *card, true
}

// State returns a deep copy of the board in wire shape. Every column is
// present, empty ones as empty lists.
func (b *Board) State() models.BoardState {
	state := models.BoardState{Columns: make(map[string][]models.Card, len(b.columns))}
	for id, cards := range b.columns {
		out := make([]models.Card, len(cards))
		for i, c := range cards {
			out[i] = *c
		}
		state.Columns[id] = out
	}
	return state
}

// Validate checks that every card has an id, a non-negative vote count,
// and appears in exactly one column exactly once.
func (b *Board) Validate() error {
	seen := make(map[string]string)
	for _, columnID := range b.order {
		for _, c := range b.columns[columnID] {
			if c.ID == "" {
				return fmt.Errorf("%w: card without id in column %q", ErrInvalidBoard, columnID)
			}
			if c.Votes < 0 {
				return fmt.Errorf("%w: card %q has negative votes", ErrInvalidBoard, c.ID)
			}
			if other, dup := seen[c.ID]; dup {
				return fmt.Errorf("%w: card %q appears in %q and %q", ErrInvalidBoard, c.ID, other, columnID)
			}
			seen[c.ID] = columnID
		}
	}
	return nil
}

func (b *Board) find(columnID, cardID string) (*models.Card, bool) {
	cards, ok := b.columns[columnID]
	if !ok {
		return nil, false
	}
	idx := indexOf(cards, cardID)
	if idx < 0 {
		return nil, false
	}
	return cards[idx], true
}

func indexOf(cards []*models.Card, cardID string) int {
	for i, c := range cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}
