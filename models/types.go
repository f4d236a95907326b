package models

// Default column identifiers
const (
	ColumnGood   = "good"
	ColumnBad    = "bad"
	ColumnAction = "action"
)

// DefaultColumns is the column set used when none is configured.
var DefaultColumns = []string{ColumnGood, ColumnBad, ColumnAction}

// DefaultMaxVotes is the per-identity vote quota for a room.
const DefaultMaxVotes = 3

// DefaultQueueSize is the number of outbound frames buffered per connection.
const DefaultQueueSize = 256

// Domain types

type Card struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Votes  int    `json:"votes"`
	Author string `json:"author"`
}

// BoardState is the wire shape of a board, used both for the init event
// and inside persisted snapshots. Column order is not carried.
type BoardState struct {
	Columns map[string][]Card `json:"columns"`
}

// Snapshot types

type RoomSnapshot struct {
	Password    string         `json:"password"`
	Board       BoardState     `json:"board"`
	VotesByUser map[string]int `json:"votesByUser"`
}

// RegistrySnapshot maps room id to room record.
type RegistrySnapshot map[string]RoomSnapshot

// Response types

type RoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
