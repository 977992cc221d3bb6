package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DmitriyMamontov/all-dice-bot/internal/storage/postgres"
	"github.com/DmitriyMamontov/all-dice-bot/internal/testutil"
)

func newRepo(t *testing.T) (*postgres.ResultRepository, *testutil.PostgresContainer) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewResultRepository(pc.Pool.DB()), pc
}

func result(table string, at time.Time, winnerScore int) postgres.GameResult {
	return postgres.GameResult{
		GameID:     uuid.New(),
		TableID:    table,
		Kind:       "black_white",
		WinnerID:   "alice",
		WinnerName: "Alice",
		Rounds:     2,
		FinishedAt: at,
		Standings: []postgres.Standing{
			{Rank: 0, ActorID: "alice", Name: "Alice", Score: winnerScore, Positive: 11, Negative: 2},
			{Rank: 1, ActorID: "bob", Name: "Bob", Score: 3, Positive: 8, Negative: 5},
		},
	}
}

func TestResultRepository_SaveGetList(t *testing.T) {
	repo, pc := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	older := result("main", base, 9)
	newer := result("main", base.Add(time.Hour), 12)
	other := result("side", base, 4)
	for _, r := range []postgres.GameResult{older, newer, other} {
		require.NoError(t, repo.SaveResult(ctx, r))
	}

	got, err := repo.Get(ctx, older.GameID)
	require.NoError(t, err)
	assert.Equal(t, older.TableID, got.TableID)
	assert.Equal(t, older.Standings, got.Standings)
	assert.True(t, older.FinishedAt.Equal(got.FinishedAt))

	list, err := repo.ListByTable(ctx, "main", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.GameID, list[0].GameID, "newest first")
	assert.Equal(t, older.GameID, list[1].GameID)

	limited, err := repo.ListByTable(ctx, "main", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.NoError(t, pc.Pool.Health(ctx, time.Second))
}

func TestResultRepository_DuplicateAndMissing(t *testing.T) {
	repo, pc := newRepo(t)
	ctx := context.Background()

	r := result("main", time.Now().UTC(), 9)
	require.NoError(t, repo.SaveResult(ctx, r))
	assert.ErrorIs(t, repo.SaveResult(ctx, r), postgres.ErrResultExists)

	pc.Truncate(t)
	assert.NoError(t, repo.SaveResult(ctx, r), "saving again after truncate")

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, postgres.ErrResultNotFound)

	empty, err := repo.ListByTable(ctx, "nowhere", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMigrate_DownAndUpAgain(t *testing.T) {
	_, pc := newRepo(t)

	res, err := postgres.Migrate(pc.DSN(), testutil.MigrationsDir(t), "up", 0)
	require.NoError(t, err)
	assert.False(t, res.Changed, "already at the latest version")
	assert.Equal(t, uint(1), res.Version)

	res, err = postgres.Migrate(pc.DSN(), testutil.MigrationsDir(t), "down", 1)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	res, err = postgres.Migrate(pc.DSN(), testutil.MigrationsDir(t), "up", 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.Version)
}

func TestMigrate_RejectsDirection(t *testing.T) {
	_, err := postgres.Migrate("postgres://u:p@127.0.0.1:1/x?sslmode=disable", "/nonexistent", "sideways", 0)
	assert.Error(t, err)
}
