// Package gameserver routes table commands to the game engines and hands the
// results to a Presenter.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/blackwhite"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/command"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/doublepig"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/engine"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/observability"
)

// ErrQuit is returned by Handle when the actor asked to leave the table.
var ErrQuit = errors.New("quit")

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithArchive enables archiving of finished games and the history command.
// listLimit caps the number of games the history command shows.
func WithArchive(a Archiver, listLimit int) Option {
	return func(d *Dispatcher) {
		d.archive = a
		if listLimit > 0 {
			d.listLimit = listLimit
		}
	}
}

// WithClock overrides the time source used to stamp archived results.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// Dispatcher turns command lines from players into engine calls.
type Dispatcher struct {
	store     *session.Store
	catalog   *ruleset.Catalog
	registry  *command.Registry
	bw        *blackwhite.Game
	pig       *doublepig.Game
	engines   map[session.Kind]*engine.Engine
	presenter Presenter
	archive   Archiver
	listLimit int
	now       func() time.Time
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher for both games over store.
//
// Precondition: bw and pig must share store; every argument must be non-nil.
func NewDispatcher(
	store *session.Store,
	catalog *ruleset.Catalog,
	bw *blackwhite.Game,
	pig *doublepig.Game,
	presenter Presenter,
	logger *zap.Logger,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		catalog:  catalog,
		registry: command.DefaultRegistry(),
		bw:       bw,
		pig:      pig,
		engines: map[session.Kind]*engine.Engine{
			session.KindBlackWhite: bw.Engine,
			session.KindDoublePig:  pig.Engine,
		},
		presenter: presenter,
		listLimit: 5,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the command registry used to resolve input.
func (d *Dispatcher) Registry() *command.Registry { return d.registry }

// Handle runs one command line typed by actor at table.
//
// Postcondition: Rejected actions are reported to the actor through the
// Presenter and never returned. The only error returned is ErrQuit.
func (d *Dispatcher) Handle(ctx context.Context, table, actor, name, line string) error {
	parsed := command.Parse(line)
	if parsed.Name == "" {
		return nil
	}
	cmd, ok := d.registry.Resolve(parsed.Name)
	if !ok {
		msg := fmt.Sprintf("Unknown command %q. Type 'help' for a list.", parsed.Name)
		if guess, ok := d.registry.Suggest(parsed.Name); ok {
			msg = fmt.Sprintf("Unknown command %q. Did you mean '%s'?", parsed.Name, guess.Name)
		}
		d.presenter.AnnounceError(table, actor, msg)
		return nil
	}
	if cmd.Handler == command.HandlerQuit {
		return ErrQuit
	}

	log := observability.ForAction(d.logger, table, actor).With(zap.String("command", cmd.Name))
	if err := d.dispatch(ctx, table, actor, name, cmd, parsed.Args); err != nil {
		log.Debug("action rejected", zap.Error(err))
		d.presenter.AnnounceError(table, actor, d.describe(table, cmd, err))
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, table, actor, name string, cmd *command.Command, args []string) error {
	switch cmd.Handler {
	case command.HandlerGames:
		d.presenter.Tell(table, actor, MenuText(d.catalog))
		return nil
	case command.HandlerHelp:
		d.presenter.Tell(table, actor, HelpText(d.registry))
		return nil
	case command.HandlerRules:
		return d.rules(table, actor, args)
	case command.HandlerHistory:
		return d.history(ctx, table, actor)
	case command.HandlerPlay:
		return d.play(table, actor, args)
	case command.HandlerBoard:
		snap, err := d.store.Get(table)
		if err != nil {
			return err
		}
		d.presenter.Render(snap)
		return nil
	case command.HandlerJoin:
		return d.shared(table, actor, func(e *engine.Engine) (engine.Result, error) {
			return e.Join(table, actor, name)
		})
	case command.HandlerClose:
		return d.shared(table, actor, func(e *engine.Engine) (engine.Result, error) {
			return e.OpenConfiguration(table)
		})
	case command.HandlerRounds:
		return d.configure(table, actor, engine.FieldRounds, args)
	case command.HandlerDice:
		return d.configure(table, actor, engine.FieldDice, args)
	case command.HandlerTarget:
		return d.configure(table, actor, engine.FieldTarget, args)
	case command.HandlerBegin:
		return d.shared(table, actor, func(e *engine.Engine) (engine.Result, error) {
			return e.BeginPlaying(table)
		})
	case command.HandlerDraw:
		res, err := d.bw.Draw(table, actor)
		if err != nil {
			return err
		}
		d.present(actor, res.Result, false)
		return nil
	case command.HandlerRoll:
		return d.roll(ctx, table, actor)
	case command.HandlerHold:
		res, err := d.pig.Hold(table, actor)
		if err != nil {
			return err
		}
		d.present(actor, res.Result, true)
		d.afterTurn(ctx, res.Snapshot)
		return nil
	case command.HandlerStop:
		return d.stop(table, actor, false)
	case command.HandlerSwitch:
		return d.stop(table, actor, true)
	case command.HandlerNew:
		return d.shared(table, actor, func(e *engine.Engine) (engine.Result, error) {
			return e.ResetToLobby(table)
		})
	default:
		return fmt.Errorf("no route for command %q", cmd.Name)
	}
}

// engineAt returns the engine for the game at table. The kind may change
// before the engine call; Mutate rejects that with ErrWrongGame.
func (d *Dispatcher) engineAt(table string) (*engine.Engine, error) {
	snap, err := d.store.Get(table)
	if err != nil {
		return nil, err
	}
	e, ok := d.engines[snap.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no engine for %s", session.ErrWrongGame, snap.Kind)
	}
	return e, nil
}

func (d *Dispatcher) shared(table, actor string, fn func(e *engine.Engine) (engine.Result, error)) error {
	e, err := d.engineAt(table)
	if err != nil {
		return err
	}
	res, err := fn(e)
	if err != nil {
		return err
	}
	d.present(actor, res, true)
	return nil
}

// present renders res and delivers its messages. A public note goes to the
// whole table, otherwise to the actor alone.
func (d *Dispatcher) present(actor string, res engine.Result, public bool) {
	table := res.Snapshot.ID
	d.presenter.Render(res.Snapshot)
	if res.Note != "" {
		if public {
			d.presenter.Notify(table, res.Note)
		} else {
			d.presenter.Tell(table, actor, res.Note)
		}
	}
	for _, n := range res.Notices {
		d.presenter.Notify(table, n)
	}
}

func (d *Dispatcher) play(table, actor string, args []string) error {
	if len(args) == 0 {
		d.presenter.Tell(table, actor, MenuText(d.catalog))
		return nil
	}
	preset, ok := d.catalog.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown game %q", errUnknownGame, args[0])
	}
	e, ok := d.engines[session.Kind(preset.ID)]
	if !ok {
		return fmt.Errorf("%w: unknown game %q", errUnknownGame, preset.ID)
	}

	res, err := e.Create(table)
	if err != nil {
		return err
	}
	d.logger.Info("game created",
		zap.String("session", table),
		zap.String("actor", actor),
		zap.String("game", preset.ID),
	)
	d.present(actor, res, true)
	return nil
}

func (d *Dispatcher) configure(table, actor string, field engine.Field, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: %s <n>", session.ErrInvalidValue, field)
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", session.ErrInvalidValue, args[0])
	}
	e, err := d.engineAt(table)
	if err != nil {
		return err
	}
	res, err := e.SetConfig(table, field, v)
	if err != nil {
		return err
	}
	if !e.ConfigComplete(res.Snapshot.Config) {
		d.present(actor, res, true)
		return nil
	}

	d.presenter.Notify(table, res.Note)
	started, err := e.BeginPlaying(table)
	if errors.Is(err, session.ErrPhase) {
		// Someone else started the game first.
		return nil
	}
	if err != nil {
		return err
	}
	d.present(actor, started, true)
	return nil
}

func (d *Dispatcher) roll(ctx context.Context, table, actor string) error {
	snap, err := d.store.Get(table)
	if err != nil {
		return err
	}
	switch snap.Kind {
	case session.KindBlackWhite:
		res, err := d.bw.Roll(table, actor)
		if err != nil {
			return err
		}
		d.present(actor, res.Result, true)
		d.afterTurn(ctx, res.Snapshot)
	case session.KindDoublePig:
		res, err := d.pig.Roll(table, actor)
		if err != nil {
			return err
		}
		d.present(actor, res.Result, true)
	default:
		return fmt.Errorf("%w: %s", session.ErrWrongGame, snap.Kind)
	}
	return nil
}

func (d *Dispatcher) stop(table, actor string, showMenu bool) error {
	e, err := d.engineAt(table)
	if err != nil {
		if showMenu && errors.Is(err, session.ErrNotFound) {
			d.presenter.Tell(table, actor, MenuText(d.catalog))
			return nil
		}
		return err
	}
	res, err := e.Stop(table)
	if err != nil {
		return err
	}
	d.logger.Info("game stopped", zap.String("session", table), zap.String("actor", actor))
	d.presenter.Notify(table, res.Note)
	if showMenu {
		d.presenter.Tell(table, actor, MenuText(d.catalog))
	}
	return nil
}

func (d *Dispatcher) rules(table, actor string, args []string) error {
	var preset *ruleset.GamePreset
	if len(args) > 0 {
		p, ok := d.catalog.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: unknown game %q", errUnknownGame, args[0])
		}
		preset = p
	} else {
		e, err := d.engineAt(table)
		if err != nil {
			return err
		}
		preset = e.Preset()
	}
	d.presenter.Tell(table, actor, RulesText(preset))
	return nil
}

func (d *Dispatcher) history(ctx context.Context, table, actor string) error {
	if d.archive == nil {
		d.presenter.Tell(table, actor, "The results archive is not enabled.")
		return nil
	}
	results, err := d.archive.ListByTable(ctx, table, d.listLimit)
	if err != nil {
		return fmt.Errorf("listing results for %q: %w", table, err)
	}
	d.presenter.Tell(table, actor, HistoryText(results))
	return nil
}

// afterTurn archives snap when the game has just finished. Failures are
// logged and never reach the players.
func (d *Dispatcher) afterTurn(ctx context.Context, snap session.Snapshot) {
	if snap.Phase != session.PhaseFinished || d.archive == nil {
		return
	}
	rec := resultRecord(snap, d.now())
	if err := d.archive.SaveResult(ctx, rec); err != nil {
		d.logger.Warn("archiving game result",
			zap.String("session", snap.ID),
			zap.String("game_id", snap.GameID.String()),
			zap.Error(err),
		)
		return
	}
	d.logger.Info("game result archived",
		zap.String("session", snap.ID),
		zap.String("game_id", snap.GameID.String()),
	)
}

// TableSummary describes one live table for the status surface.
type TableSummary struct {
	ID      string   `json:"id"`
	Game    string   `json:"game"`
	Phase   string   `json:"phase"`
	Players []string `json:"players"`
	Round   int      `json:"round"`
}

// Tables lists every live table, sorted by id. Tables removed while the list
// is built are skipped.
func (d *Dispatcher) Tables() []TableSummary {
	ids := d.store.IDs()
	out := make([]TableSummary, 0, len(ids))
	for _, id := range ids {
		snap, err := d.store.Get(id)
		if err != nil {
			continue
		}
		sum := TableSummary{
			ID:      snap.ID,
			Game:    string(snap.Kind),
			Phase:   snap.Phase.String(),
			Players: make([]string, 0, len(snap.Players)),
			Round:   snap.RoundIndex,
		}
		for _, p := range snap.Players {
			sum.Players = append(sum.Players, p.Name)
		}
		out = append(out, sum)
	}
	return out
}

func (d *Dispatcher) describe(table string, cmd *command.Command, err error) string {
	if errors.Is(err, errUnknownGame) {
		return "Unknown game. Type 'games' to see what can be played."
	}
	msg := Describe(err)
	if !errors.Is(err, session.ErrInvalidValue) {
		return msg
	}
	e, lookupErr := d.engineAt(table)
	if lookupErr != nil {
		return msg
	}
	players := 0
	if snap, err := d.store.Get(table); err == nil {
		players = len(snap.Players)
	}
	if hint := optionsHint(e.Preset(), cmd.Handler, players); hint != "" {
		msg += " " + hint
	}
	return msg
}

var errUnknownGame = errors.New("unknown game")
