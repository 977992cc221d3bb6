package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrResultExists is returned when a game id has already been archived.
var ErrResultExists = errors.New("game result already archived")

// ErrResultNotFound is returned when a game id has no archived result.
var ErrResultNotFound = errors.New("game result not found")

// Standing is one archived line of a final ranking.
type Standing struct {
	Rank     int    `json:"rank"`
	ActorID  string `json:"actor_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Positive int    `json:"positive,omitempty"`
	Negative int    `json:"negative,omitempty"`
}

// GameResult is the archived outcome of one finished game.
type GameResult struct {
	GameID     uuid.UUID
	TableID    string
	Kind       string
	WinnerID   string
	WinnerName string
	Standings  []Standing
	Rounds     int
	FinishedAt time.Time
}

// ResultRepository stores finished games in the game_results table.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveResult inserts r.
//
// Precondition: r.GameID must be set.
// Postcondition: Returns ErrResultExists if the game id was archived before.
func (r *ResultRepository) SaveResult(ctx context.Context, res GameResult) error {
	standings, err := json.Marshal(res.Standings)
	if err != nil {
		return fmt.Errorf("encoding standings: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO game_results
		   (game_id, table_id, kind, winner_id, winner_name, standings, rounds, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.GameID, res.TableID, res.Kind, res.WinnerID, res.WinnerName, standings, res.Rounds, res.FinishedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrResultExists
		}
		return fmt.Errorf("inserting game result: %w", err)
	}
	return nil
}

// Get retrieves the result for gameID.
//
// Postcondition: Returns the GameResult or ErrResultNotFound.
func (r *ResultRepository) Get(ctx context.Context, gameID uuid.UUID) (GameResult, error) {
	row := r.db.QueryRow(ctx,
		`SELECT game_id, table_id, kind, winner_id, winner_name, standings, rounds, finished_at
		 FROM game_results WHERE game_id = $1`,
		gameID,
	)
	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GameResult{}, ErrResultNotFound
		}
		return GameResult{}, fmt.Errorf("querying game result: %w", err)
	}
	return res, nil
}

// ListByTable returns up to limit results for tableID, newest first.
//
// Precondition: limit must be > 0.
func (r *ResultRepository) ListByTable(ctx context.Context, tableID string, limit int) ([]GameResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT game_id, table_id, kind, winner_id, winner_name, standings, rounds, finished_at
		 FROM game_results WHERE table_id = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		tableID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing game results: %w", err)
	}
	defer rows.Close()

	var out []GameResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game result: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating game results: %w", err)
	}
	return out, nil
}

func scanResult(row pgx.Row) (GameResult, error) {
	var (
		res       GameResult
		standings []byte
	)
	if err := row.Scan(&res.GameID, &res.TableID, &res.Kind, &res.WinnerID, &res.WinnerName,
		&standings, &res.Rounds, &res.FinishedAt); err != nil {
		return GameResult{}, err
	}
	if err := json.Unmarshal(standings, &res.Standings); err != nil {
		return GameResult{}, fmt.Errorf("decoding standings: %w", err)
	}
	return res, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
