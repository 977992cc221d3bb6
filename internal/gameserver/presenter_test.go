package gameserver

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/pool"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
)

func TestDescribe_WrappedSentinels(t *testing.T) {
	sentinels := []error{
		session.ErrNotFound, session.ErrAlreadyExists, session.ErrPhase, session.ErrWrongGame,
		session.ErrNotYourTurn, session.ErrNotPlaying, session.ErrAlreadyActed,
		session.ErrDuplicateActor, session.ErrRosterFull, session.ErrRosterTooSmall,
		session.ErrInvalidValue, session.ErrIncompleteConfig, session.ErrOutstandingDraw,
		session.ErrNoPendingDraw, session.ErrMustContinue, pool.ErrDepleted,
	}
	seen := make(map[string]error)
	for _, sentinel := range sentinels {
		wrapped := fmt.Errorf("table %q: %w", "t1", sentinel)
		msg := Describe(wrapped)
		assert.Equal(t, Describe(sentinel), msg)
		if prev, dup := seen[msg]; dup {
			t.Errorf("%v and %v share message %q", prev, sentinel, msg)
		}
		seen[msg] = sentinel
	}
}

func TestDescribe_UnknownAndNil(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "Something went wrong. Please try again.", Describe(errors.New("disk on fire")))
}

func TestResultRecord(t *testing.T) {
	id := uuid.New()
	snap := session.Snapshot{
		ID:         "t1",
		GameID:     id,
		Kind:       session.KindBlackWhite,
		Phase:      session.PhaseFinished,
		RoundIndex: 3,
		Players: []session.PlayerView{
			{ID: "alice", Name: "Alice", Positive: 11, Negative: 2},
			{ID: "bob", Name: "Bob", Positive: 8, Negative: 5},
		},
		Results: []session.Standing{
			{Rank: 0, ActorID: "alice", Name: "Alice", Score: 9, Positive: 11, Negative: 2},
			{Rank: 1, ActorID: "bob", Name: "Bob", Score: 3, Positive: 8, Negative: 5},
		},
		Winner: "alice",
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("MSK", 3*3600))

	rec := resultRecord(snap, at)
	assert.Equal(t, id, rec.GameID)
	assert.Equal(t, "black_white", rec.Kind)
	assert.Equal(t, "Alice", rec.WinnerName)
	assert.Equal(t, 3, rec.Rounds)
	assert.Equal(t, time.UTC, rec.FinishedAt.Location())
	require.Len(t, rec.Standings, 2)
	assert.Equal(t, 11, rec.Standings[0].Positive)
	assert.Equal(t, "bob", rec.Standings[1].ActorID)
}

func TestOptionsHint(t *testing.T) {
	catalog := ruleset.DefaultCatalog()
	bw, _ := catalog.Get("black_white")
	pig, _ := catalog.Get("double_pig")

	assert.Equal(t, "Choose 2 to 20 rounds (e.g. 2, 3, 4, 5, 6).", optionsHint(bw, "rounds", 2))
	assert.Equal(t, "This game has no target setting.", optionsHint(bw, "target", 2))
	assert.Equal(t, "Choose 4, 6, 8 dice.", optionsHint(bw, "dice", 2))
	assert.Equal(t, "Choose 6, 8 dice.", optionsHint(bw, "dice", 3))
	assert.Equal(t, "5 players need at least 10 dice.", optionsHint(bw, "dice", 5))
	assert.Equal(t, "No box holds enough dice for 11 players.", optionsHint(bw, "dice", 11))
	assert.Equal(t, "This game has no rounds setting.", optionsHint(pig, "rounds", 2))
	assert.Equal(t, "", optionsHint(pig, "roll", 2))
}

func TestHistoryText_Empty(t *testing.T) {
	assert.Equal(t, "No finished games at this table yet.", HistoryText(nil))
}
