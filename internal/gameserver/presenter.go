package gameserver

import (
	"errors"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/pool"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
)

// Presenter shows game state to the people at a table. Implementations must
// be safe for concurrent use; the dispatcher calls them after the session
// lock is released.
type Presenter interface {
	// Render shows the board for snap to everyone at table snap.ID.
	Render(snap session.Snapshot)
	// Notify sends one line to everyone at table.
	Notify(table, text string)
	// AnnounceError tells actor alone why an action was rejected.
	AnnounceError(table, actor, msg string)
	// Tell sends text to actor alone.
	Tell(table, actor, text string)
}

// Describe maps an action error to the message shown to the player.
// Unknown errors get a generic message; their detail belongs in the log.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNotFound):
		return "There is no game at this table. Type 'games' to pick one."
	case errors.Is(err, session.ErrAlreadyExists):
		return "A game is already running here. Use 'stop' or 'switch' first."
	case errors.Is(err, session.ErrWrongGame):
		return "That move belongs to a different game."
	case errors.Is(err, session.ErrNotYourTurn):
		return "Not your turn!"
	case errors.Is(err, session.ErrNotPlaying):
		return "You are not playing in this game."
	case errors.Is(err, session.ErrAlreadyActed):
		return "You already played this round."
	case errors.Is(err, session.ErrDuplicateActor):
		return "You already joined."
	case errors.Is(err, session.ErrRosterFull):
		return "The table is full."
	case errors.Is(err, session.ErrRosterTooSmall):
		return "Not enough players yet."
	case errors.Is(err, session.ErrInvalidValue):
		return "That value is not allowed."
	case errors.Is(err, session.ErrIncompleteConfig):
		return "Finish the settings first."
	case errors.Is(err, session.ErrOutstandingDraw):
		return "You already drew your dice. Roll them!"
	case errors.Is(err, session.ErrNoPendingDraw):
		return "Draw your dice first."
	case errors.Is(err, session.ErrMustContinue):
		return "You rolled a double and must roll again."
	case errors.Is(err, session.ErrPhase):
		return "You can't do that right now."
	case errors.Is(err, pool.ErrDepleted):
		return "The box is empty."
	default:
		return "Something went wrong. Please try again."
	}
}
