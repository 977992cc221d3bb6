package session

import "errors"

// Action errors. Every rejected action reports one of these (possibly wrapped)
// and leaves the session untouched.
var (
	ErrNotFound         = errors.New("no game at this table")
	ErrAlreadyExists    = errors.New("a game is already running at this table")
	ErrPhase            = errors.New("action not allowed in the current phase")
	ErrWrongGame        = errors.New("action does not belong to the game at this table")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotPlaying       = errors.New("you are not playing in this game")
	ErrAlreadyActed     = errors.New("you already played this round")
	ErrDuplicateActor   = errors.New("you already joined")
	ErrRosterFull       = errors.New("the table is full")
	ErrRosterTooSmall   = errors.New("not enough players")
	ErrInvalidValue     = errors.New("invalid configuration value")
	ErrIncompleteConfig = errors.New("configuration is incomplete")
	ErrOutstandingDraw  = errors.New("dice already drawn, roll them first")
	ErrNoPendingDraw    = errors.New("draw dice first")
	ErrMustContinue     = errors.New("a double forces another roll")
)
