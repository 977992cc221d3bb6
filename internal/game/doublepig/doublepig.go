// Package doublepig implements "Double Pig", a push-your-luck game with two
// dice: keep rolling to build turn points, hold to bank them, and avoid ones.
package doublepig

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/engine"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/turn"
)

// Outcome classifies a roll.
type Outcome int

const (
	// Scored adds the sum to the turn points.
	Scored Outcome = iota
	// Doubled adds twice the sum and forces another roll.
	Doubled
	// Bust loses the turn points and ends the turn.
	Bust
	// Wipeout loses the whole score and ends the turn.
	Wipeout
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Scored:
		return "scored"
	case Doubled:
		return "doubled"
	case Bust:
		return "bust"
	case Wipeout:
		return "wipeout"
	default:
		return "unknown"
	}
}

// Classify decides the outcome of a two-dice roll and the turn points it adds.
func Classify(d1, d2 int) (Outcome, int) {
	switch {
	case d1 == 1 && d2 == 1:
		return Wipeout, 0
	case d1 == 1 || d2 == 1:
		return Bust, 0
	case d1 == d2:
		return Doubled, 2 * (d1 + d2)
	default:
		return Scored, d1 + d2
	}
}

var rollExpr = dice.MustParse("2d6")

type rules struct{}

func (rules) Kind() session.Kind { return session.KindDoublePig }

func (rules) ConfigComplete(cfg session.Config) bool { return cfg.TargetScore > 0 }

func (rules) CheckConfig(session.Config, int) error { return nil }

func (rules) Start(s *session.Session) error {
	for _, p := range s.Players {
		p.Total = 0
		p.TurnPoints = 0
	}
	return nil
}

func (rules) Scheduler() turn.Scheduler { return turn.FreeRunning{} }

// Rank puts the winner first and orders the rest by total, then join order.
func (rules) Rank(s *session.Session) []session.Standing {
	order := append([]string(nil), s.JoinOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := s.Players[order[i]], s.Players[order[j]]
		if (a.ID == s.Winner) != (b.ID == s.Winner) {
			return a.ID == s.Winner
		}
		return a.Total > b.Total
	})
	out := make([]session.Standing, len(order))
	for i, id := range order {
		p := s.Players[id]
		out[i] = session.Standing{Rank: i, ActorID: p.ID, Name: p.Name, Score: p.Total}
	}
	return out
}

// Game is the Double Pig rule engine.
type Game struct {
	*engine.Engine
}

// New creates a Double Pig engine over store.
//
// Precondition: preset must describe double_pig; store, roller and logger must be non-nil.
func New(store *session.Store, preset *ruleset.GamePreset, roller *dice.Roller, logger *zap.Logger) *Game {
	return &Game{Engine: engine.New(store, rules{}, preset, roller, logger)}
}

// RollResult reports one roll of the two dice.
type RollResult struct {
	engine.Result
	Values     []int
	Outcome    Outcome
	Gained     int
	TurnPoints int
	Total      int
	// TurnEnded is set on a bust or wipeout; Progress is valid only then.
	TurnEnded bool
	Progress  turn.Progress
}

// Roll rolls two dice for the current actor.
//
// Postcondition: Every roll is recorded in the history. A bust or wipeout
// ends the turn; a non-one double obliges the actor to roll again.
func (g *Game) Roll(id, actor string) (RollResult, error) {
	var out RollResult
	res, err := g.Mutate(id, func(s *session.Session) (engine.Result, error) {
		p, err := engine.RequireTurn(s, actor)
		if err != nil {
			return engine.Result{}, err
		}

		roll := g.Roller().Roll(rollExpr)
		d1, d2 := roll.Dice[0], roll.Dice[1]
		outcome, gained := Classify(d1, d2)

		var note string
		switch outcome {
		case Wipeout:
			p.Total = 0
			p.TurnPoints = 0
			p.MustContinue = false
			note = "double one, the whole score is wiped"
		case Bust:
			p.TurnPoints = 0
			p.MustContinue = false
			note = "a one, the turn burns"
		case Doubled:
			p.TurnPoints += gained
			p.MustContinue = true
			note = fmt.Sprintf("double! +%d, roll again", gained)
		default:
			p.TurnPoints += gained
			p.MustContinue = false
			note = fmt.Sprintf("+%d", gained)
		}
		s.Append(session.HistoryEntry{
			ActorID:   p.ID,
			ActorName: p.Name,
			Kind:      session.EntryRoll,
			Values:    roll.Dice,
			Result:    gained,
			Note:      note,
		})

		out.Values = append([]int(nil), roll.Dice...)
		out.Outcome = outcome
		out.Gained = gained
		out.TurnPoints = p.TurnPoints
		out.Total = p.Total

		res := engine.Result{Note: fmt.Sprintf("%s %s %s", p.Name, roll.Glyphs(), note)}
		if outcome == Wipeout || outcome == Bust {
			prog, err := g.endTurn(s, p)
			if err != nil {
				return engine.Result{}, err
			}
			out.TurnEnded = true
			out.Progress = prog
			res.Notices = append(res.Notices, s.CurrentPlayer().Name+" to roll")
		}
		g.Logger().Debug("pig roll",
			zap.String("session", id),
			zap.String("actor", actor),
			zap.Ints("dice", roll.Dice),
			zap.Stringer("outcome", outcome),
		)
		return res, nil
	})
	if err != nil {
		return RollResult{}, err
	}
	out.Result = res
	return out, nil
}

// HoldResult reports banked points and where the game went next.
type HoldResult struct {
	engine.Result
	Banked   int
	Total    int
	Won      bool
	Progress turn.Progress
}

// Hold banks the actor's turn points.
//
// Postcondition: Returns ErrMustContinue after a double. Reaching the target
// finishes the game with the actor as winner; otherwise the turn passes on.
func (g *Game) Hold(id, actor string) (HoldResult, error) {
	var out HoldResult
	res, err := g.Mutate(id, func(s *session.Session) (engine.Result, error) {
		p, err := engine.RequireTurn(s, actor)
		if err != nil {
			return engine.Result{}, err
		}
		if p.MustContinue {
			return engine.Result{}, session.ErrMustContinue
		}

		banked := p.TurnPoints
		p.Total += banked
		s.Append(session.HistoryEntry{
			ActorID:   p.ID,
			ActorName: p.Name,
			Kind:      session.EntryHold,
			Result:    banked,
			Note:      fmt.Sprintf("banked +%d", banked),
		})
		out.Banked = banked
		out.Total = p.Total

		res := engine.Result{Note: fmt.Sprintf("%s banked %d (total %d)", p.Name, banked, p.Total)}
		if p.Total >= s.Config.TargetScore {
			p.TurnPoints = 0
			s.Winner = p.ID
			if err := s.Advance(session.PhaseFinished); err != nil {
				return engine.Result{}, err
			}
			g.Finish(s)
			out.Won = true
			out.Progress = turn.Progress{Outcome: turn.GameOver, Current: p.ID, Round: s.RoundIndex}
			res.Notices = append(res.Notices, p.Name+" reached "+fmt.Sprint(s.Config.TargetScore)+" and wins")
			return res, nil
		}

		prog, err := g.endTurn(s, p)
		if err != nil {
			return engine.Result{}, err
		}
		out.Progress = prog
		res.Notices = append(res.Notices, s.CurrentPlayer().Name+" to roll")
		return res, nil
	})
	if err != nil {
		return HoldResult{}, err
	}
	out.Result = res
	return out, nil
}

func (g *Game) endTurn(s *session.Session, p *session.PlayerState) (turn.Progress, error) {
	p.TurnPoints = 0
	p.MustContinue = false
	p.HasActed = true
	prog, err := rules{}.Scheduler().Advance(s)
	if err != nil {
		return turn.Progress{}, err
	}
	if prog.Outcome == turn.NextRound {
		for _, q := range s.Players {
			q.HasActed = false
		}
	}
	return prog, nil
}
