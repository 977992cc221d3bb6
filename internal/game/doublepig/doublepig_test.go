package doublepig_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/doublepig"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/engine"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/turn"
)

// scriptedSrc returns queued values for each n and 0 once a queue is empty.
type scriptedSrc struct {
	mu     sync.Mutex
	queues map[int][]int
}

func (s *scriptedSrc) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[n]
	if len(q) == 0 {
		return 0
	}
	s.queues[n] = q[1:]
	return q[0]
}

// faces queues the given die faces for Intn(6) after a Perm(2) that keeps join order.
func faces(values ...int) *scriptedSrc {
	q := make([]int, len(values))
	for i, v := range values {
		q[i] = v - 1
	}
	return &scriptedSrc{queues: map[int][]int{2: {1}, 6: q}}
}

func newGame(t *testing.T, src dice.Source) *doublepig.Game {
	t.Helper()
	logger := zaptest.NewLogger(t)
	preset, ok := ruleset.DefaultCatalog().Get("double_pig")
	require.True(t, ok)
	return doublepig.New(session.NewStore(logger), preset, dice.NewLoggedRoller(src, logger), logger)
}

func startGame(t *testing.T, g *doublepig.Game, target int) session.Snapshot {
	t.Helper()
	_, err := g.Create("t1")
	require.NoError(t, err)
	for _, p := range []string{"alice", "bob"} {
		_, err := g.Join("t1", p, p)
		require.NoError(t, err)
	}
	_, err = g.OpenConfiguration("t1")
	require.NoError(t, err)
	_, err = g.SetConfig("t1", engine.FieldTarget, target)
	require.NoError(t, err)
	res, err := g.BeginPlaying("t1")
	require.NoError(t, err)
	require.Equal(t, "alice", res.Snapshot.Current)
	return res.Snapshot
}

func TestClassify(t *testing.T) {
	cases := []struct {
		d1, d2  int
		outcome doublepig.Outcome
		points  int
	}{
		{1, 1, doublepig.Wipeout, 0},
		{1, 4, doublepig.Bust, 0},
		{6, 1, doublepig.Bust, 0},
		{5, 5, doublepig.Doubled, 20},
		{2, 2, doublepig.Doubled, 8},
		{3, 4, doublepig.Scored, 7},
	}
	for _, c := range cases {
		o, pts := doublepig.Classify(c.d1, c.d2)
		assert.Equal(t, c.outcome, o, "%d,%d", c.d1, c.d2)
		assert.Equal(t, c.points, pts, "%d,%d", c.d1, c.d2)
	}
	assert.Equal(t, "wipeout", doublepig.Wipeout.String())
}

func TestScriptedTurns(t *testing.T) {
	g := newGame(t, faces(3, 4, 1, 5, 5, 5, 2, 3))
	startGame(t, g, 50)

	r, err := g.Roll("t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, doublepig.Scored, r.Outcome)
	assert.Equal(t, 7, r.TurnPoints)
	assert.False(t, r.TurnEnded)

	_, err = g.Roll("t1", "bob")
	assert.ErrorIs(t, err, session.ErrNotYourTurn)

	h, err := g.Hold("t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 7, h.Banked)
	assert.Equal(t, 7, h.Total)
	assert.Equal(t, "bob", h.Snapshot.Current)
	assert.Equal(t, turn.NextActor, h.Progress.Outcome)

	r, err = g.Roll("t1", "bob")
	require.NoError(t, err)
	assert.Equal(t, doublepig.Bust, r.Outcome)
	assert.True(t, r.TurnEnded)
	assert.Equal(t, turn.NextRound, r.Progress.Outcome)
	assert.Equal(t, "alice", r.Snapshot.Current)
	assert.Equal(t, 2, r.Snapshot.RoundIndex)

	r, err = g.Roll("t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, doublepig.Doubled, r.Outcome)
	assert.Equal(t, 20, r.TurnPoints)
	alice, _ := r.Snapshot.Player("alice")
	assert.True(t, alice.MustContinue)

	_, err = g.Hold("t1", "alice")
	assert.ErrorIs(t, err, session.ErrMustContinue)

	r, err = g.Roll("t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 25, r.TurnPoints)

	h, err = g.Hold("t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 32, h.Total)
	assert.False(t, h.Won)
	assert.Equal(t, "bob", h.Snapshot.Current)
	assert.Len(t, h.Snapshot.History, 6)
}

func TestDoubleOneWipesTotal(t *testing.T) {
	g := newGame(t, faces(6, 5, 1, 1))
	startGame(t, g, 50)

	_, err := g.Roll("t1", "alice")
	require.NoError(t, err)
	_, err = g.Hold("t1", "alice")
	require.NoError(t, err)

	r, err := g.Roll("t1", "bob")
	require.NoError(t, err)
	assert.Equal(t, doublepig.Wipeout, r.Outcome)
	assert.Zero(t, r.Total)

	// bob rolled only once before the wipeout, alice keeps her banked points.
	alice, _ := r.Snapshot.Player("alice")
	assert.Equal(t, 11, alice.Total)
	assert.Equal(t, "alice", r.Snapshot.Current)
}

func TestHoldReachingTargetWins(t *testing.T) {
	// alice: 6+5, 6+5, 6+5, 6+5, 6+4 = 54 in one turn.
	g := newGame(t, faces(6, 5, 6, 5, 6, 5, 6, 5, 6, 4))
	startGame(t, g, 50)

	for i := 0; i < 5; i++ {
		r, err := g.Roll("t1", "alice")
		require.NoError(t, err)
		assert.Equal(t, session.PhasePlaying, r.Snapshot.Phase, "reaching the target without holding never ends the game")
	}
	h, err := g.Hold("t1", "alice")
	require.NoError(t, err)
	assert.True(t, h.Won)
	assert.Equal(t, 54, h.Total)
	assert.Equal(t, turn.GameOver, h.Progress.Outcome)

	final := h.Snapshot
	assert.Equal(t, session.PhaseFinished, final.Phase)
	assert.Equal(t, "alice", final.Winner)
	require.Len(t, final.Results, 2)
	assert.Equal(t, "alice", final.Results[0].ActorID)
	assert.Equal(t, 54, final.Results[0].Score)
	assert.Equal(t, "bob", final.Results[1].ActorID)

	_, err = g.Roll("t1", "bob")
	assert.ErrorIs(t, err, session.ErrPhase)
}

func TestHoldWithoutPoints(t *testing.T) {
	g := newGame(t, faces())
	startGame(t, g, 50)
	h, err := g.Hold("t1", "alice")
	require.NoError(t, err)
	assert.Zero(t, h.Banked)
	assert.Equal(t, "bob", h.Snapshot.Current)
}

func TestProperty_DoubleOneAlwaysZeroesTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		// Non-one rolls for alice, then a wipeout.
		n := rapid.IntRange(0, 6).Draw(rt, "rolls")
		var values []int
		for i := 0; i < n; i++ {
			values = append(values, rapid.IntRange(2, 6).Draw(rt, "a"), rapid.IntRange(2, 6).Draw(rt, "b"))
		}
		values = append(values, 1, 1)
		g := newGame(t, faces(values...))
		startGame(t, g, 150)

		for i := 0; i < n; i++ {
			if _, err := g.Roll("t1", "alice"); err != nil {
				rt.Fatal(err)
			}
		}
		r, err := g.Roll("t1", "alice")
		if err != nil {
			rt.Fatal(err)
		}
		if r.Outcome != doublepig.Wipeout || r.Total != 0 || r.TurnPoints != 0 {
			rt.Fatalf("after double one: outcome=%s total=%d turn=%d", r.Outcome, r.Total, r.TurnPoints)
		}
		if r.Snapshot.Current != "bob" {
			rt.Fatalf("turn did not pass after a wipeout")
		}
	})
}

func TestProperty_DoubleForcesRoll(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.IntRange(2, 6).Draw(rt, "double")
		g := newGame(t, faces(d, d))
		startGame(t, g, 150)
		r, err := g.Roll("t1", "alice")
		if err != nil {
			rt.Fatal(err)
		}
		if r.Outcome != doublepig.Doubled {
			rt.Fatalf("outcome %s for %d,%d", r.Outcome, d, d)
		}
		if _, err := g.Hold("t1", "alice"); err == nil {
			rt.Fatalf("hold accepted after a double")
		}
	})
}
