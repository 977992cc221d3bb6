// Package session holds the per-table game state and the store that
// serialises mutations to it.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/pool"
)

// Kind identifies which rule set a session plays.
type Kind string

const (
	KindBlackWhite Kind = "black_white"
	KindDoublePig  Kind = "double_pig"
)

// Phase is the coarse lifecycle stage of a session. Phases only move forward.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseConfiguring
	PhasePlaying
	PhaseFinished
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseConfiguring:
		return "configuring"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Config holds the game parameters chosen while configuring. Zero means unset.
type Config struct {
	Rounds      int
	DiceCount   int
	TargetScore int
}

// EntryKind classifies history entries.
type EntryKind int

const (
	EntryRoll EntryKind = iota
	EntryHold
	EntryNotice
)

// HistoryEntry is one resolved action. Entries are copied in and out of the
// session and never modified after Append.
type HistoryEntry struct {
	Seq       int
	Round     int
	ActorID   string
	ActorName string
	Kind      EntryKind
	Tokens    []pool.Token
	Values    []int
	Result    int
	Note      string
}

func (e HistoryEntry) clone() HistoryEntry {
	e.Tokens = append([]pool.Token(nil), e.Tokens...)
	e.Values = append([]int(nil), e.Values...)
	return e
}

// PlayerState is one seat at the table.
type PlayerState struct {
	ID   string
	Name string

	// Black & White accumulators.
	Positive    int
	Negative    int
	PendingDraw []pool.Token

	// Double Pig accumulators.
	Total      int
	TurnPoints int

	HasActed     bool
	MustContinue bool

	Log []HistoryEntry
}

// Net returns Positive - Negative.
func (p *PlayerState) Net() int { return p.Positive - p.Negative }

// Standing is one line of the final ranking.
type Standing struct {
	Rank     int
	ActorID  string
	Name     string
	Score    int
	Positive int
	Negative int
}

// Session is the complete state of one game at one table.
//
// Invariant: during PhasePlaying, Current is an element of TurnOrder and
// TurnOrder is a permutation of JoinOrder.
type Session struct {
	ID        string
	GameID    uuid.UUID
	Kind      Kind
	Phase     Phase
	Config    Config
	CreatedAt time.Time

	Players   map[string]*PlayerState
	JoinOrder []string

	TurnOrder  []string
	Current    string
	RoundIndex int
	TurnsTaken int

	Pool *pool.DrawPool

	Results []Standing
	Winner  string

	history []HistoryEntry
}

// New creates an empty lobby for the given table.
func New(id string, kind Kind) *Session {
	return &Session{
		ID:        id,
		GameID:    uuid.New(),
		Kind:      kind,
		Phase:     PhaseLobby,
		CreatedAt: time.Now().UTC(),
		Players:   make(map[string]*PlayerState),
	}
}

// AddPlayer seats a new player.
//
// Postcondition: Returns ErrPhase outside the lobby, ErrDuplicateActor for a
// known id, otherwise the new PlayerState.
func (s *Session) AddPlayer(id, name string) (*PlayerState, error) {
	if s.Phase != PhaseLobby {
		return nil, fmt.Errorf("%w: the lobby is closed", ErrPhase)
	}
	if _, exists := s.Players[id]; exists {
		return nil, ErrDuplicateActor
	}
	p := &PlayerState{ID: id, Name: name}
	s.Players[id] = p
	s.JoinOrder = append(s.JoinOrder, id)
	return p, nil
}

// Player returns the seat for id.
func (s *Session) Player(id string) (*PlayerState, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// CurrentPlayer returns the seat whose turn it is, or nil outside play.
func (s *Session) CurrentPlayer() *PlayerState {
	return s.Players[s.Current]
}

// Advance moves the session exactly one phase forward.
//
// Postcondition: Returns ErrPhase unless to == s.Phase+1.
func (s *Session) Advance(to Phase) error {
	if to != s.Phase+1 {
		return fmt.Errorf("%w: cannot go from %s to %s", ErrPhase, s.Phase, to)
	}
	s.Phase = to
	return nil
}

// Append records a resolved action in the session history and in the
// acting player's log, assigning its sequence number and round.
func (s *Session) Append(e HistoryEntry) HistoryEntry {
	e.Seq = len(s.history) + 1
	e.Round = s.RoundIndex
	e = e.clone()
	s.history = append(s.history, e)
	if p, ok := s.Players[e.ActorID]; ok {
		p.Log = append(p.Log, e.clone())
	}
	return e.clone()
}

// History returns a copy of every entry in append order.
func (s *Session) History() []HistoryEntry {
	return s.Recent(0)
}

// Recent returns copies of the last n entries; n <= 0 returns all of them.
func (s *Session) Recent(n int) []HistoryEntry {
	start := 0
	if n > 0 && len(s.history) > n {
		start = len(s.history) - n
	}
	out := make([]HistoryEntry, 0, len(s.history)-start)
	for _, e := range s.history[start:] {
		out = append(out, e.clone())
	}
	return out
}

// ResetRoundFlags clears every seat's per-round flags and pending draws.
func (s *Session) ResetRoundFlags() {
	for _, p := range s.Players {
		p.HasActed = false
		p.MustContinue = false
		p.PendingDraw = nil
	}
}

// AllActed reports whether every seated player has acted this round.
func (s *Session) AllActed() bool {
	for _, p := range s.Players {
		if !p.HasActed {
			return false
		}
	}
	return len(s.Players) > 0
}

// AnyActed reports whether at least one player has acted this round.
func (s *Session) AnyActed() bool {
	for _, p := range s.Players {
		if p.HasActed {
			return true
		}
	}
	return false
}

// CheckInvariants verifies the turn-order invariants during play.
func (s *Session) CheckInvariants() error {
	if s.Phase != PhasePlaying {
		return nil
	}
	if len(s.TurnOrder) != len(s.Players) {
		return fmt.Errorf("turn order has %d entries for %d players", len(s.TurnOrder), len(s.Players))
	}
	seen := make(map[string]bool, len(s.TurnOrder))
	current := false
	for _, id := range s.TurnOrder {
		if _, ok := s.Players[id]; !ok {
			return fmt.Errorf("turn order names unknown player %q", id)
		}
		if seen[id] {
			return fmt.Errorf("turn order repeats player %q", id)
		}
		seen[id] = true
		if id == s.Current {
			current = true
		}
	}
	if !current {
		return fmt.Errorf("current player %q is not in the turn order", s.Current)
	}
	return nil
}
