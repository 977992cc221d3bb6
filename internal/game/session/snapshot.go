package session

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/pool"
)

// PlayerView is the read-only copy of a seat carried by a Snapshot.
type PlayerView struct {
	ID           string
	Name         string
	Positive     int
	Negative     int
	Total        int
	TurnPoints   int
	HasActed     bool
	MustContinue bool
	PendingDraw  []pool.Token
}

// Net returns Positive - Negative.
func (v PlayerView) Net() int { return v.Positive - v.Negative }

// Snapshot is a deep copy of a Session taken under its lock. It shares no
// memory with the live session and is safe to render after the lock is released.
type Snapshot struct {
	// Seq orders snapshots: one taken later has a larger Seq. Zero means
	// the snapshot was not taken from a live session.
	Seq        uint64
	ID         string
	GameID     uuid.UUID
	Kind       Kind
	Phase      Phase
	Config     Config
	Players    []PlayerView
	TurnOrder  []string
	Current    string
	RoundIndex int
	TurnsTaken int

	PoolSize      int
	PoolRemaining int

	History []HistoryEntry
	Results []Standing
	Winner  string
}

var snapshotSeq atomic.Uint64

// Snapshot copies the session. Players are listed in join order.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Seq:        snapshotSeq.Add(1),
		ID:         s.ID,
		GameID:     s.GameID,
		Kind:       s.Kind,
		Phase:      s.Phase,
		Config:     s.Config,
		Players:    make([]PlayerView, 0, len(s.JoinOrder)),
		TurnOrder:  append([]string(nil), s.TurnOrder...),
		Current:    s.Current,
		RoundIndex: s.RoundIndex,
		TurnsTaken: s.TurnsTaken,
		History:    s.History(),
		Results:    append([]Standing(nil), s.Results...),
		Winner:     s.Winner,
	}
	if s.Pool != nil {
		snap.PoolSize = s.Pool.Size()
		snap.PoolRemaining = s.Pool.Remaining()
	}
	for _, id := range s.JoinOrder {
		p := s.Players[id]
		snap.Players = append(snap.Players, PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Positive:     p.Positive,
			Negative:     p.Negative,
			Total:        p.Total,
			TurnPoints:   p.TurnPoints,
			HasActed:     p.HasActed,
			MustContinue: p.MustContinue,
			PendingDraw:  append([]pool.Token(nil), p.PendingDraw...),
		})
	}
	return snap
}

// Player returns the view for id.
func (s Snapshot) Player(id string) (PlayerView, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// CurrentName returns the display name of the current actor, or "".
func (s Snapshot) CurrentName() string {
	p, _ := s.Player(s.Current)
	return p.Name
}

// Recent returns the last n history entries; n <= 0 returns all of them.
func (s Snapshot) Recent(n int) []HistoryEntry {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
