// Package turn decides who acts next and when rounds end.
package turn

import (
	"errors"
	"fmt"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
)

// Outcome is the result of advancing a turn.
type Outcome int

const (
	// NextActor means the round continues with another player.
	NextActor Outcome = iota
	// NextRound means a new round started.
	NextRound
	// GameOver means the final round completed and the session is finished.
	GameOver
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case NextActor:
		return "next_actor"
	case NextRound:
		return "next_round"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Progress describes the state reached after Advance.
type Progress struct {
	Outcome Outcome
	Current string
	Round   int
}

// Scheduler advances the turn after the current player's turn has ended.
type Scheduler interface {
	// Advance moves s.Current to the next eligible actor.
	//
	// Precondition: s is in PhasePlaying and its lock is held.
	Advance(s *session.Session) (Progress, error)
}

var errNotPlaying = errors.New("turn: session is not playing")

// BeginPlaying fixes a random turn order for s and starts round one.
//
// Precondition: s holds at least one player; the caller holds its lock.
// Postcondition: TurnOrder is a uniform permutation of JoinOrder,
// Current is its head, RoundIndex is 1, and every round flag is cleared.
func BeginPlaying(s *session.Session, src dice.Source) error {
	if len(s.JoinOrder) == 0 {
		return fmt.Errorf("turn: %w", session.ErrRosterTooSmall)
	}
	perm := dice.Perm(src, len(s.JoinOrder))
	order := make([]string, len(perm))
	for i, j := range perm {
		order[i] = s.JoinOrder[j]
	}
	s.TurnOrder = order
	s.Current = order[0]
	s.RoundIndex = 1
	s.TurnsTaken = 0
	s.ResetRoundFlags()
	return nil
}

// RotateLeft moves the head of order to its tail in place.
func RotateLeft(order []string) {
	if len(order) < 2 {
		return
	}
	head := order[0]
	copy(order, order[1:])
	order[len(order)-1] = head
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

// RoundRobin gives every player exactly one turn per round. When the round
// completes the order rotates left so a different player opens the next one,
// and the game ends after Config.Rounds rounds.
type RoundRobin struct{}

// Advance implements Scheduler.
func (RoundRobin) Advance(s *session.Session) (Progress, error) {
	if s.Phase != session.PhasePlaying {
		return Progress{}, errNotPlaying
	}
	s.TurnsTaken++

	if !s.AllActed() {
		pos := indexOf(s.TurnOrder, s.Current)
		for step := 1; step <= len(s.TurnOrder); step++ {
			next := s.TurnOrder[(pos+step)%len(s.TurnOrder)]
			if p, ok := s.Player(next); ok && !p.HasActed {
				s.Current = next
				return Progress{Outcome: NextActor, Current: next, Round: s.RoundIndex}, nil
			}
		}
	}

	if s.RoundIndex >= s.Config.Rounds {
		if err := s.Advance(session.PhaseFinished); err != nil {
			return Progress{}, err
		}
		return Progress{Outcome: GameOver, Current: s.Current, Round: s.RoundIndex}, nil
	}

	RotateLeft(s.TurnOrder)
	s.RoundIndex++
	s.Current = s.TurnOrder[0]
	s.ResetRoundFlags()
	return Progress{Outcome: NextRound, Current: s.Current, Round: s.RoundIndex}, nil
}

// FreeRunning passes the turn on after every ended turn by rotating the
// order left. A new round starts each time the opener is back at the head.
type FreeRunning struct{}

// Advance implements Scheduler.
func (FreeRunning) Advance(s *session.Session) (Progress, error) {
	if s.Phase != session.PhasePlaying {
		return Progress{}, errNotPlaying
	}
	s.TurnsTaken++
	RotateLeft(s.TurnOrder)
	s.Current = s.TurnOrder[0]
	if s.TurnsTaken%len(s.TurnOrder) == 0 {
		s.RoundIndex++
		return Progress{Outcome: NextRound, Current: s.Current, Round: s.RoundIndex}, nil
	}
	return Progress{Outcome: NextActor, Current: s.Current, Round: s.RoundIndex}, nil
}
