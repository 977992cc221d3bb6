// Package blackwhite implements "Black & White": players draw white (+) and
// black (-) dice from a shared box and score the difference of their rolls.
package blackwhite

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/engine"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/pool"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/turn"
)

type rules struct{}

func (rules) Kind() session.Kind { return session.KindBlackWhite }

func (rules) ConfigComplete(cfg session.Config) bool {
	return cfg.Rounds > 0 && cfg.DiceCount > 0
}

// CheckConfig requires a box big enough for every player of a round.
func (rules) CheckConfig(cfg session.Config, players int) error {
	if need := pool.MinSize(players); cfg.DiceCount > 0 && cfg.DiceCount < need {
		return fmt.Errorf("%w: %d players need at least %d dice", session.ErrInvalidValue, players, need)
	}
	return nil
}

func (rules) Start(s *session.Session) error {
	p, err := pool.New(s.Config.DiceCount)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalidValue, err)
	}
	s.Pool = p
	return nil
}

func (rules) Scheduler() turn.Scheduler { return turn.RoundRobin{} }

// Rank orders by net score, then by white total, then by join order.
func (rules) Rank(s *session.Session) []session.Standing {
	order := append([]string(nil), s.JoinOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := s.Players[order[i]], s.Players[order[j]]
		if a.Net() != b.Net() {
			return a.Net() > b.Net()
		}
		return a.Positive > b.Positive
	})
	out := make([]session.Standing, len(order))
	for i, id := range order {
		p := s.Players[id]
		out[i] = session.Standing{
			Rank:     i,
			ActorID:  p.ID,
			Name:     p.Name,
			Score:    p.Net(),
			Positive: p.Positive,
			Negative: p.Negative,
		}
	}
	return out
}

// Game is the Black & White rule engine.
type Game struct {
	*engine.Engine
}

// New creates a Black & White engine over store.
//
// Precondition: preset must describe black_white; store, roller and logger must be non-nil.
func New(store *session.Store, preset *ruleset.GamePreset, roller *dice.Roller, logger *zap.Logger) *Game {
	return &Game{Engine: engine.New(store, rules{}, preset, roller, logger)}
}

// DrawResult reports the dice taken from the box.
type DrawResult struct {
	engine.Result
	Tokens []pool.Token
	// Refilled is set when the box ran out. No dice are drawn then; the
	// box is full again and the round restarts from the first player.
	Refilled bool
}

// Draw takes the actor's share of dice from the box.
//
// Postcondition: Returns ErrNotYourTurn, ErrAlreadyActed or ErrOutstandingDraw
// without changing the session. A box too empty for the actor's share is
// refilled, every turn flag of the round is cleared and the turn passes to
// the head of the order; Refilled is set and a notice is added.
func (g *Game) Draw(id, actor string) (DrawResult, error) {
	var out DrawResult
	res, err := g.Mutate(id, func(s *session.Session) (engine.Result, error) {
		p, err := engine.RequireTurn(s, actor)
		if err != nil {
			return engine.Result{}, err
		}
		if p.HasActed {
			return engine.Result{}, session.ErrAlreadyActed
		}
		if len(p.PendingDraw) > 0 {
			return engine.Result{}, session.ErrOutstandingDraw
		}

		var res engine.Result
		tokens, err := g.draw(s)
		if errors.Is(err, pool.ErrDepleted) {
			res.Notices = append(res.Notices, g.restartRound(s, p))
			out.Refilled = true
			res.Note = "the box was refilled and the round starts over"
			return res, nil
		}
		if err != nil {
			return engine.Result{}, err
		}
		p.PendingDraw = tokens
		out.Tokens = append([]pool.Token(nil), tokens...)
		res.Note = fmt.Sprintf("drew %d dice, now roll them", len(tokens))
		g.Logger().Debug("dice drawn",
			zap.String("session", id),
			zap.String("actor", actor),
			zap.Int("count", len(tokens)),
			zap.Int("remaining", s.Pool.Remaining()),
		)
		return res, nil
	})
	if err != nil {
		return DrawResult{}, err
	}
	out.Result = res
	return out, nil
}

func (g *Game) draw(s *session.Session) ([]pool.Token, error) {
	count := pool.DrawSize(len(s.TurnOrder), !s.AnyActed(), s.Pool.Size(), s.Pool.Remaining())
	return s.Pool.Draw(count, g.Roller().Source())
}

// restartRound refills the box and starts the current round over from the
// head of the turn order. Scores already rolled this round stand.
func (g *Game) restartRound(s *session.Session, actor *session.PlayerState) string {
	s.Pool.Refill()
	s.ResetRoundFlags()
	s.Current = s.TurnOrder[0]
	note := fmt.Sprintf("The box ran out of dice and was refilled (%d dice). The round starts over.", s.Pool.Size())
	s.Append(session.HistoryEntry{Kind: session.EntryNotice, ActorName: actor.Name, Note: note})
	g.Logger().Warn("dice pool depleted, round restarted",
		zap.String("session", s.ID),
		zap.String("actor", actor.ID),
		zap.Int("round", s.RoundIndex),
	)
	return note
}

// TurnResult reports a resolved roll and where the game went next.
type TurnResult struct {
	engine.Result
	Tokens   []pool.Token
	Values   []int
	Positive int
	Negative int
	Delta    int
	Progress turn.Progress
}

// Roll rolls the actor's drawn dice and scores white minus black.
//
// Postcondition: Returns ErrNoPendingDraw before a draw. On success the
// actor's turn ends; the round or game advances as the scheduler decides.
func (g *Game) Roll(id, actor string) (TurnResult, error) {
	var out TurnResult
	res, err := g.Mutate(id, func(s *session.Session) (engine.Result, error) {
		p, err := engine.RequireTurn(s, actor)
		if err != nil {
			return engine.Result{}, err
		}
		if p.HasActed {
			return engine.Result{}, session.ErrAlreadyActed
		}
		if len(p.PendingDraw) == 0 {
			return engine.Result{}, session.ErrNoPendingDraw
		}

		tokens := p.PendingDraw
		roll := g.Roller().Roll(dice.D6(len(tokens)))
		pos, neg := 0, 0
		for i, t := range tokens {
			if t.Polarity == pool.Positive {
				pos += roll.Dice[i]
			} else {
				neg += roll.Dice[i]
			}
		}
		delta := pos - neg

		p.Positive += pos
		p.Negative += neg
		p.HasActed = true
		p.PendingDraw = nil
		s.Append(session.HistoryEntry{
			ActorID:   p.ID,
			ActorName: p.Name,
			Kind:      session.EntryRoll,
			Tokens:    tokens,
			Values:    roll.Dice,
			Result:    delta,
			Note:      fmt.Sprintf("%+d", delta),
		})

		out.Tokens = append([]pool.Token(nil), tokens...)
		out.Values = append([]int(nil), roll.Dice...)
		out.Positive, out.Negative, out.Delta = pos, neg, delta

		prog, err := rules{}.Scheduler().Advance(s)
		if err != nil {
			return engine.Result{}, err
		}
		out.Progress = prog

		res := engine.Result{Note: fmt.Sprintf("%s scored %+d", p.Name, delta)}
		switch prog.Outcome {
		case turn.NextRound:
			s.Pool.Refill()
			res.Notices = append(res.Notices, fmt.Sprintf("Round %d of %d", s.RoundIndex, s.Config.Rounds))
		case turn.GameOver:
			g.Finish(s)
			res.Notices = append(res.Notices, "Game over")
		}
		return res, nil
	})
	if err != nil {
		return TurnResult{}, err
	}
	out.Result = res
	return out, nil
}
