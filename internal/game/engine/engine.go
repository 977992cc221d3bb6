// Package engine implements the parts of a table game shared by every rule
// set: lobby, configuration, start of play, stop, reset and snapshots.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/turn"
)

// Field names a configurable game parameter.
type Field string

const (
	FieldRounds Field = "rounds"
	FieldDice   Field = "dice"
	FieldTarget Field = "target"
)

// Rules is the variant-specific part of a game.
type Rules interface {
	// Kind identifies the variant.
	Kind() session.Kind
	// ConfigComplete reports whether cfg has every field the variant needs.
	ConfigComplete(cfg session.Config) bool
	// CheckConfig rejects a configuration the roster cannot play with
	// ErrInvalidValue. Unset fields are not checked.
	CheckConfig(cfg session.Config, players int) error
	// Start prepares variant state when play begins.
	//
	// Precondition: the session lock is held and Config is complete.
	Start(s *session.Session) error
	// Scheduler returns the turn policy for the variant.
	Scheduler() turn.Scheduler
	// Rank orders the players of a finished session.
	Rank(s *session.Session) []session.Standing
}

// Result is returned by every successful mutation. Snapshot is taken under
// the session lock; Note is a short message for the acting player and
// Notices are messages for the whole table.
type Result struct {
	Snapshot session.Snapshot
	Note     string
	Notices  []string
}

// Engine drives one variant of table game over a shared session store.
type Engine struct {
	store  *session.Store
	rules  Rules
	preset *ruleset.GamePreset
	roller *dice.Roller
	logger *zap.Logger
}

// New creates an Engine.
//
// Precondition: every argument must be non-nil and preset.ID must equal rules.Kind().
func New(store *session.Store, rules Rules, preset *ruleset.GamePreset, roller *dice.Roller, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		rules:  rules,
		preset: preset,
		roller: roller,
		logger: logger.With(zap.String("game", string(rules.Kind()))),
	}
}

// Kind returns the variant this engine plays.
func (e *Engine) Kind() session.Kind { return e.rules.Kind() }

// Preset returns the rule preset bounding configuration.
func (e *Engine) Preset() *ruleset.GamePreset { return e.preset }

// Roller returns the dice roller used for every random decision.
func (e *Engine) Roller() *dice.Roller { return e.roller }

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger { return e.logger }

// ConfigComplete reports whether cfg is ready for play.
func (e *Engine) ConfigComplete(cfg session.Config) bool { return e.rules.ConfigComplete(cfg) }

// Mutate runs fn under the session lock after checking that the session
// plays this engine's variant. On success the returned Result carries a
// snapshot taken before the lock is released.
//
// Postcondition: Returns ErrNotFound or ErrWrongGame without calling fn when
// the table does not host this variant.
func (e *Engine) Mutate(id string, fn func(s *session.Session) (Result, error)) (Result, error) {
	var res Result
	err := e.store.WithLock(id, func(s *session.Session) error {
		if s.Kind != e.rules.Kind() {
			return fmt.Errorf("%w: table plays %s", session.ErrWrongGame, s.Kind)
		}
		r, err := fn(s)
		if err != nil {
			return err
		}
		res = r
		res.Snapshot = s.Snapshot()
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// RequireTurn checks that actor may act now.
//
// Postcondition: Returns ErrPhase outside play, ErrNotPlaying for an actor
// not in the roster, ErrNotYourTurn for anybody but the current actor.
func RequireTurn(s *session.Session, actor string) (*session.PlayerState, error) {
	if s.Phase != session.PhasePlaying {
		return nil, fmt.Errorf("%w: the game is %s", session.ErrPhase, s.Phase)
	}
	p, ok := s.Player(actor)
	if !ok {
		return nil, session.ErrNotPlaying
	}
	if s.Current != actor {
		return nil, session.ErrNotYourTurn
	}
	return p, nil
}

// Finish ranks the players of s and records the winner.
//
// Precondition: s.Phase is PhaseFinished.
func (e *Engine) Finish(s *session.Session) {
	s.Results = e.rules.Rank(s)
	if len(s.Results) > 0 {
		s.Winner = s.Results[0].ActorID
	}
	e.logger.Info("game finished",
		zap.String("session", s.ID),
		zap.String("game_id", s.GameID.String()),
		zap.String("winner", s.Winner),
		zap.Int("rounds", s.RoundIndex),
	)
}

// Create opens a lobby for this variant at table id. A finished game at id
// is replaced by the new lobby under its lock, so a lobby opened
// concurrently by someone else is never discarded.
//
// Postcondition: Returns ErrAlreadyExists if the table hosts a game that is
// not finished.
func (e *Engine) Create(id string) (Result, error) {
	snap, err := e.store.Replace(id, func(old *session.Session) (*session.Session, error) {
		if old.Phase != session.PhaseFinished {
			return nil, fmt.Errorf("table %q: %w", id, session.ErrAlreadyExists)
		}
		return session.New(id, e.rules.Kind()), nil
	})
	if errors.Is(err, session.ErrNotFound) {
		snap, err = e.store.Create(id, e.rules.Kind())
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Snapshot: snap, Note: fmt.Sprintf("%s: waiting for players", e.preset.Name)}, nil
}

// Join seats actor in the lobby at table id.
//
// Postcondition: Returns ErrDuplicateActor for a seated actor and
// ErrRosterFull once the preset's maximum is reached; the roster is unchanged
// on error.
func (e *Engine) Join(id, actor, name string) (Result, error) {
	return e.Mutate(id, func(s *session.Session) (Result, error) {
		if s.Phase != session.PhaseLobby {
			return Result{}, fmt.Errorf("%w: the lobby is closed", session.ErrPhase)
		}
		if _, seated := s.Player(actor); seated {
			return Result{}, session.ErrDuplicateActor
		}
		if e.preset.RosterFull(len(s.Players)) {
			return Result{}, fmt.Errorf("%w: at most %d players", session.ErrRosterFull, e.preset.MaxPlayers)
		}
		if _, err := s.AddPlayer(actor, name); err != nil {
			return Result{}, err
		}
		e.logger.Debug("player joined", zap.String("session", id), zap.String("actor", actor))
		return Result{Note: name + " joined"}, nil
	})
}

// OpenConfiguration closes the lobby and starts configuration.
//
// Postcondition: Returns ErrRosterTooSmall below the preset's minimum.
func (e *Engine) OpenConfiguration(id string) (Result, error) {
	return e.Mutate(id, func(s *session.Session) (Result, error) {
		if s.Phase != session.PhaseLobby {
			return Result{}, fmt.Errorf("%w: the lobby is already closed", session.ErrPhase)
		}
		if len(s.Players) < e.preset.MinPlayers {
			return Result{}, fmt.Errorf("%w: need at least %d", session.ErrRosterTooSmall, e.preset.MinPlayers)
		}
		if err := s.Advance(session.PhaseConfiguring); err != nil {
			return Result{}, err
		}
		return Result{Note: "lobby closed"}, nil
	})
}

// SetConfig sets one configuration field.
//
// Postcondition: Returns ErrInvalidValue for an unknown field, a value the
// preset does not allow or one the seated roster cannot play; ErrPhase
// outside configuration. Config is unchanged on error.
func (e *Engine) SetConfig(id string, field Field, value int) (Result, error) {
	return e.Mutate(id, func(s *session.Session) (Result, error) {
		if s.Phase != session.PhaseConfiguring {
			return Result{}, fmt.Errorf("%w: configuration is not open", session.ErrPhase)
		}
		prev := s.Config
		switch field {
		case FieldRounds:
			if !e.preset.AcceptsRounds(value) {
				return Result{}, fmt.Errorf("%w: %d rounds", session.ErrInvalidValue, value)
			}
			s.Config.Rounds = value
		case FieldDice:
			if !e.preset.AcceptsDice(value) {
				return Result{}, fmt.Errorf("%w: %d dice", session.ErrInvalidValue, value)
			}
			s.Config.DiceCount = value
		case FieldTarget:
			if !e.preset.AcceptsTarget(value) {
				return Result{}, fmt.Errorf("%w: target %d", session.ErrInvalidValue, value)
			}
			s.Config.TargetScore = value
		default:
			return Result{}, fmt.Errorf("%w: unknown setting %q", session.ErrInvalidValue, field)
		}
		if err := e.rules.CheckConfig(s.Config, len(s.Players)); err != nil {
			s.Config = prev
			return Result{}, err
		}
		return Result{Note: fmt.Sprintf("%s set to %d", field, value)}, nil
	})
}

// BeginPlaying fixes the turn order and starts round one.
//
// Postcondition: Returns ErrIncompleteConfig if a required field is unset.
func (e *Engine) BeginPlaying(id string) (Result, error) {
	return e.Mutate(id, func(s *session.Session) (Result, error) {
		if s.Phase != session.PhaseConfiguring {
			return Result{}, fmt.Errorf("%w: the game is %s", session.ErrPhase, s.Phase)
		}
		if !e.rules.ConfigComplete(s.Config) {
			return Result{}, session.ErrIncompleteConfig
		}
		if err := e.rules.CheckConfig(s.Config, len(s.Players)); err != nil {
			return Result{}, err
		}
		if err := e.rules.Start(s); err != nil {
			return Result{}, err
		}
		if err := s.Advance(session.PhasePlaying); err != nil {
			return Result{}, err
		}
		if err := turn.BeginPlaying(s, e.roller.Source()); err != nil {
			return Result{}, err
		}
		e.logger.Info("game started",
			zap.String("session", id),
			zap.String("game_id", s.GameID.String()),
			zap.Strings("order", s.TurnOrder),
		)
		first := s.CurrentPlayer()
		return Result{Note: "the game begins", Notices: []string{first.Name + " goes first"}}, nil
	})
}

// Stop destroys the game at table id. The result carries the final state.
func (e *Engine) Stop(id string) (Result, error) {
	snap, err := e.store.Remove(id)
	if err != nil {
		return Result{}, err
	}
	return Result{Snapshot: snap, Note: e.preset.Name + " stopped"}, nil
}

// ResetToLobby replaces the game at table id with a fresh lobby of the same
// variant and a new game id.
func (e *Engine) ResetToLobby(id string) (Result, error) {
	snap, err := e.store.Replace(id, func(old *session.Session) (*session.Session, error) {
		if old.Kind != e.rules.Kind() {
			return nil, fmt.Errorf("%w: table plays %s", session.ErrWrongGame, old.Kind)
		}
		return session.New(old.ID, old.Kind), nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Snapshot: snap, Note: "new game created"}, nil
}

// Snapshot returns the current state of table id.
func (e *Engine) Snapshot(id string) (session.Snapshot, error) {
	return e.store.Get(id)
}
