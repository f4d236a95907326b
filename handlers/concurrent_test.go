// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/snapshot"
	"github.com/danielhkuo/retroboard/testutil"
)

// drain reads frames until the connection stays quiet for idle and counts
// them by event name.
func drain(conn *websocket.Conn, idle time.Duration) map[string]int {
	counts := make(map[string]int)
	for {
		conn.SetReadDeadline(time.Now().Add(idle))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return counts
		}
		var env models.Envelope
		if json.Unmarshal(frame, &env) == nil {
			counts[env.Event]++
		}
	}
}

// TestConcurrentVotesSharedIdentity verifies that several connections using
// the same username share one quota even when their votes race
func TestConcurrentVotesSharedIdentity(t *testing.T) {
	s := startServer(t, snapshot.NewMemoryStore())
	defer s.stop(t)

	owner, _ := testutil.Join(t, s.srv.URL, "/ws", testutil.Handshake("R1", "p1", "owner"))
	testutil.SendEvent(t, owner, models.EventAddCard, models.AddCardCommand{
		Column: models.ColumnGood,
		Card:   models.CardDraft{ID: "c1", Text: "pairing"},
	})
	testutil.ReadEvent(t, owner)

	numConns := 6
	votesPerConn := 2
	conns := make([]*websocket.Conn, numConns)
	for i := range conns {
		conns[i], _ = testutil.Join(t, s.srv.URL, "/ws", testutil.Handshake("R1", "p1", "team"))
	}

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			for v := 0; v < votesPerConn; v++ {
				frame, _ := models.EncodeEvent(models.EventVoteCard, models.VoteCardCommand{Column: models.ColumnGood, CardID: "c1"})
				conn.WriteMessage(websocket.TextMessage, frame)
			}
		}(conn)
	}
	wg.Wait()

	var denied, voted atomic.Int32
	for _, conn := range conns {
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			counts := drain(conn, 500*time.Millisecond)
			denied.Add(int32(counts[models.EventVoteDenied]))
			voted.Add(int32(counts[models.EventCardVoted]))
		}(conn)
	}
	ownerCounts := drain(owner, 500*time.Millisecond)
	wg.Wait()

	if ownerCounts[models.EventCardVoted] != models.DefaultMaxVotes {
		t.Errorf("Expected %d accepted votes, got %d", models.DefaultMaxVotes, ownerCounts[models.EventCardVoted])
	}
	if ownerCounts[models.EventVoteDenied] != 0 {
		t.Error("Denials must only reach the requesting connection")
	}

	total := numConns * votesPerConn
	if int(denied.Load()) != total-models.DefaultMaxVotes {
		t.Errorf("Expected %d denials, got %d", total-models.DefaultMaxVotes, denied.Load())
	}
	if int(voted.Load()) != numConns*models.DefaultMaxVotes {
		t.Errorf("Every connection should see every accepted vote, got %d", voted.Load())
	}

	snap := testutil.RoomState(t, s.reg, "R1")
	if snap.VotesByUser["team"] != models.DefaultMaxVotes {
		t.Errorf("Expected ledger of %d, got %d", models.DefaultMaxVotes, snap.VotesByUser["team"])
	}
	if got := snap.Board.Columns[models.ColumnGood][0].Votes; got != models.DefaultMaxVotes {
		t.Errorf("Expected %d votes on the card, got %d", models.DefaultMaxVotes, got)
	}
}

// TestConcurrentRoomCreation verifies that racing handshakes for a new room
// agree on one password
func TestConcurrentRoomCreation(t *testing.T) {
	s := startServer(t, snapshot.NewMemoryStore())
	defer s.stop(t)

	numClients := 8
	var admitted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			conn, _, err := websocket.DefaultDialer.Dial("ws"+s.srv.URL[len("http"):]+"/ws", nil)
			if err != nil {
				t.Errorf("dial failed: %v", err)
				return
			}
			defer conn.Close()

			// Two competing passwords
			password := "even"
			if i%2 == 1 {
				password = "odd"
			}
			frame, _ := models.EncodeEvent(models.EventAuth, testutil.Handshake("race", password, "u"))
			conn.WriteMessage(websocket.TextMessage, frame)

			conn.SetReadDeadline(time.Now().Add(testutil.EventTimeout))
			_, reply, err := conn.ReadMessage()
			if err != nil {
				t.Errorf("read failed: %v", err)
				return
			}
			var env models.Envelope
			json.Unmarshal(reply, &env)
			if env.Event == models.EventInit {
				admitted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	// Exactly one password class wins
	if admitted.Load() != int32(numClients/2) {
		t.Errorf("Expected %d admitted clients, got %d", numClients/2, admitted.Load())
	}
	if ids := s.reg.ListRoomIDs(); len(ids) != 1 || ids[0] != "race" {
		t.Errorf("Expected one room, got %v", ids)
	}
}
