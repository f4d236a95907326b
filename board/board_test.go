// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package board

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/retroboard/models"
)

func newBoard() *Board {
	return New(models.DefaultColumns)
}

func ids(b *Board, columnID string) []string {
	var out []string
	for _, c := range b.State().Columns[columnID] {
		out = append(out, c.ID)
	}
	return out
}

func TestNew_EmptyColumns(t *testing.T) {
	b := newBoard()

	state := b.State()
	require.Len(t, state.Columns, 3)
	for _, id := range models.DefaultColumns {
		assert.NotNil(t, state.Columns[id], "column %s should be an empty list, not nil", id)
		assert.Empty(t, state.Columns[id])
	}
}

func TestAddCard(t *testing.T) {
	b := newBoard()

	card, err := b.AddCard("good", models.CardDraft{ID: "c1", Text: "ship it"}, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.Card{ID: "c1", Text: "ship it", Votes: 0, Author: "alice"}, card)

	_, err = b.AddCard("good", models.CardDraft{ID: "c2", Text: "second"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids(b, "good"), "new cards append to the end")
}

func TestAddCard_GeneratesID(t *testing.T) {
	b := newBoard()

	card, err := b.AddCard("bad", models.CardDraft{Text: "no id"}, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, card.ID)

	// A reused id must not create a duplicate on the board
	_, err = b.AddCard("good", models.CardDraft{ID: "dup", Text: "first"}, "alice")
	require.NoError(t, err)
	again, err := b.AddCard("action", models.CardDraft{ID: "dup", Text: "second"}, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, "dup", again.ID)
	assert.NoError(t, b.Validate())
}

func TestAddCard_Rejects(t *testing.T) {
	b := newBoard()

	_, err := b.AddCard("ugly", models.CardDraft{ID: "c1", Text: "x"}, "alice")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = b.AddCard("good", models.CardDraft{ID: "c1", Text: ""}, "alice")
	assert.ErrorIs(t, err, ErrEmptyText)

	assert.Zero(t, b.CardCount(), "rejected adds must not mutate the board")
}

func TestAddCard_WhitespaceTextIsKept(t *testing.T) {
	b := newBoard()

	card, err := b.AddCard("good", models.CardDraft{ID: "c1", Text: "   "}, "alice")
	require.NoError(t, err)
	assert.Equal(t, "   ", card.Text)
	assert.Equal(t, []string{"c1"}, ids(b, "good"))
}

func TestMoveCard(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		card      string
		index     int
		wantIndex int
		wantFrom  []string
		wantTo    []string
	}{
		{"to other column top", "good", "action", "c1", 0, 0, []string{"c2", "c3"}, []string{"c1", "a1"}},
		{"past end appends", "good", "action", "c2", 99, 1, []string{"c1", "c3"}, []string{"a1", "c2"}},
		{"negative inserts at top", "good", "action", "c3", -4, 0, []string{"c1", "c2"}, []string{"c3", "a1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard()
			for _, id := range []string{"c1", "c2", "c3"} {
				_, err := b.AddCard("good", models.CardDraft{ID: id, Text: id}, "alice")
				require.NoError(t, err)
			}
			_, err := b.AddCard("action", models.CardDraft{ID: "a1", Text: "a1"}, "alice")
			require.NoError(t, err)

			idx, ok := b.MoveCard(tt.card, tt.from, tt.to, tt.index)
			require.True(t, ok)
			assert.Equal(t, tt.wantIndex, idx)
			assert.Equal(t, tt.wantFrom, ids(b, tt.from))
			assert.Equal(t, tt.wantTo, ids(b, tt.to))
			assert.NoError(t, b.Validate())
		})
	}
}

// A negative index always lands at the top of the target column. It does
// not count back from the end of the column.
func TestMoveCard_NegativeIndexGoesToTop(t *testing.T) {
	b := newBoard()
	for _, id := range []string{"a1", "a2", "a3"} {
		_, err := b.AddCard("action", models.CardDraft{ID: id, Text: id}, "alice")
		require.NoError(t, err)
	}
	_, err := b.AddCard("good", models.CardDraft{ID: "c1", Text: "c1"}, "alice")
	require.NoError(t, err)

	idx, ok := b.MoveCard("c1", "good", "action", -1)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []string{"c1", "a1", "a2", "a3"}, ids(b, "action"))
	assert.NotEqual(t, []string{"a1", "a2", "c1", "a3"}, ids(b, "action"))
}

func TestMoveCard_SameColumnReorder(t *testing.T) {
	b := newBoard()
	for _, id := range []string{"c1", "c2", "c3"} {
		_, err := b.AddCard("good", models.CardDraft{ID: id, Text: id}, "alice")
		require.NoError(t, err)
	}

	idx, ok := b.MoveCard("c1", "good", "good", 2)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, []string{"c2", "c3", "c1"}, ids(b, "good"))

	idx, ok = b.MoveCard("c3", "good", "good", 0)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []string{"c3", "c2", "c1"}, ids(b, "good"))
}

func TestMoveCard_ReplayIsNoop(t *testing.T) {
	b := newBoard()
	_, err := b.AddCard("good", models.CardDraft{ID: "c1", Text: "ship it"}, "alice")
	require.NoError(t, err)

	_, ok := b.MoveCard("c1", "good", "action", 0)
	require.True(t, ok)
	before := b.State()

	_, ok = b.MoveCard("c1", "good", "action", 0)
	assert.False(t, ok, "replayed move must be ignored")
	assert.Equal(t, before, b.State())
}

func TestMoveCard_UnknownColumns(t *testing.T) {
	b := newBoard()
	_, err := b.AddCard("good", models.CardDraft{ID: "c1", Text: "x"}, "alice")
	require.NoError(t, err)

	_, ok := b.MoveCard("c1", "good", "nowhere", 0)
	assert.False(t, ok)
	_, ok = b.MoveCard("c1", "nowhere", "good", 0)
	assert.False(t, ok)
	assert.Equal(t, []string{"c1"}, ids(b, "good"), "card stays put when the target is unknown")
}

func TestIncrementVote(t *testing.T) {
	b := newBoard()
	_, err := b.AddCard("good", models.CardDraft{ID: "c1", Text: "x"}, "alice")
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		votes, ok := b.IncrementVote("good", "c1")
		require.True(t, ok)
		assert.Equal(t, want, votes)
	}

	_, ok := b.IncrementVote("bad", "c1")
	assert.False(t, ok, "card lives in a different column")
	_, ok = b.IncrementVote("good", "missing")
	assert.False(t, ok)

	card, ok := b.Lookup("good", "c1")
	require.True(t, ok)
	assert.Equal(t, 3, card.Votes)
}

func TestState_IsACopy(t *testing.T) {
	b := newBoard()
	_, err := b.AddCard("good", models.CardDraft{ID: "c1", Text: "x"}, "alice")
	require.NoError(t, err)

	state := b.State()
	state.Columns["good"][0].Votes = 100
	state.Columns["good"] = nil

	card, ok := b.Lookup("good", "c1")
	require.True(t, ok)
	assert.Zero(t, card.Votes)
}

func TestFromState(t *testing.T) {
	state := models.BoardState{Columns: map[string][]models.Card{
		"good":   {{ID: "c1", Text: "x", Votes: 2, Author: "alice"}},
		"action": {{ID: "c2", Text: "y", Author: "bob"}},
	}}

	b, err := FromState(models.DefaultColumns, state)
	require.NoError(t, err)
	got := b.State()
	assert.Equal(t, state.Columns["good"], got.Columns["good"])
	assert.Equal(t, state.Columns["action"], got.Columns["action"])
	assert.Empty(t, got.Columns["bad"], "missing columns start empty")
}

func TestFromState_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		columns map[string][]models.Card
	}{
		{"unknown column", map[string][]models.Card{"ugly": {{ID: "c1"}}}},
		{"duplicate across columns", map[string][]models.Card{"good": {{ID: "c1"}}, "bad": {{ID: "c1"}}}},
		{"duplicate within column", map[string][]models.Card{"good": {{ID: "c1"}, {ID: "c1"}}}},
		{"empty id", map[string][]models.Card{"good": {{Text: "x"}}}},
		{"negative votes", map[string][]models.Card{"good": {{ID: "c1", Votes: -1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromState(models.DefaultColumns, models.BoardState{Columns: tt.columns})
			assert.ErrorIs(t, err, ErrInvalidBoard)
		})
	}
}

// Every card stays in exactly one column across an arbitrary sequence of
// adds and moves, including stale ones.
func TestInvariant_RandomAddMove(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := newBoard()
	cols := models.DefaultColumns
	var added []string

	for step := 0; step < 2000; step++ {
		if len(added) == 0 || rng.Intn(4) == 0 {
			id := fmt.Sprintf("c%d", step)
			_, err := b.AddCard(cols[rng.Intn(len(cols))], models.CardDraft{ID: id, Text: id}, "alice")
			require.NoError(t, err)
			added = append(added, id)
			continue
		}
		id := added[rng.Intn(len(added))]
		b.MoveCard(id, cols[rng.Intn(len(cols))], cols[rng.Intn(len(cols))], rng.Intn(10)-2)

		require.NoError(t, b.Validate(), "step %d", step)
	}

	assert.Equal(t, len(added), b.CardCount(), "no card is lost or duplicated")
	for _, id := range added {
		assert.True(t, b.Contains(id))
	}
}
