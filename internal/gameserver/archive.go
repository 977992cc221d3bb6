package gameserver

import (
	"context"
	"time"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/storage/postgres"
)

// Archiver persists finished games. *postgres.ResultRepository satisfies it.
type Archiver interface {
	SaveResult(ctx context.Context, res postgres.GameResult) error
	ListByTable(ctx context.Context, tableID string, limit int) ([]postgres.GameResult, error)
}

// resultRecord converts a finished snapshot into an archive record.
//
// Precondition: snap.Phase is PhaseFinished.
func resultRecord(snap session.Snapshot, finishedAt time.Time) postgres.GameResult {
	rec := postgres.GameResult{
		GameID:     snap.GameID,
		TableID:    snap.ID,
		Kind:       string(snap.Kind),
		WinnerID:   snap.Winner,
		Rounds:     snap.RoundIndex,
		FinishedAt: finishedAt.UTC(),
		Standings:  make([]postgres.Standing, 0, len(snap.Results)),
	}
	if p, ok := snap.Player(snap.Winner); ok {
		rec.WinnerName = p.Name
	}
	for _, st := range snap.Results {
		rec.Standings = append(rec.Standings, postgres.Standing{
			Rank:     st.Rank,
			ActorID:  st.ActorID,
			Name:     st.Name,
			Score:    st.Score,
			Positive: st.Positive,
			Negative: st.Negative,
		})
	}
	return rec
}
