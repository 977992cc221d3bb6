package turn_test

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/turn"
)

// zeroSrc always returns 0, which makes dice.Perm produce a fixed rotation.
type zeroSrc struct{}

func (zeroSrc) Intn(int) int { return 0 }

func playing(t *testing.T, rounds int, ids ...string) *session.Session {
	t.Helper()
	s := session.New("t", session.KindBlackWhite)
	for _, id := range ids {
		_, err := s.AddPlayer(id, id)
		require.NoError(t, err)
	}
	require.NoError(t, s.Advance(session.PhaseConfiguring))
	s.Config.Rounds = rounds
	require.NoError(t, s.Advance(session.PhasePlaying))
	require.NoError(t, turn.BeginPlaying(s, zeroSrc{}))
	return s
}

func act(t *testing.T, s *session.Session, sched turn.Scheduler) turn.Progress {
	t.Helper()
	p, ok := s.Player(s.Current)
	require.True(t, ok)
	p.HasActed = true
	prog, err := sched.Advance(s)
	require.NoError(t, err)
	return prog
}

func TestBeginPlaying(t *testing.T) {
	s := playing(t, 2, "a", "b", "c")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.TurnOrder)
	assert.Equal(t, s.TurnOrder[0], s.Current)
	assert.Equal(t, 1, s.RoundIndex)
	assert.NoError(t, s.CheckInvariants())
}

func TestBeginPlaying_EmptyRoster(t *testing.T) {
	s := session.New("t", session.KindDoublePig)
	assert.ErrorIs(t, turn.BeginPlaying(s, zeroSrc{}), session.ErrRosterTooSmall)
}

func TestRotateLeft(t *testing.T) {
	order := []string{"a", "b", "c"}
	turn.RotateLeft(order)
	assert.Equal(t, []string{"b", "c", "a"}, order)
	single := []string{"a"}
	turn.RotateLeft(single)
	assert.Equal(t, []string{"a"}, single)
}

func TestRoundRobin_FullGame(t *testing.T) {
	s := playing(t, 2, "a", "b", "c")
	start := append([]string(nil), s.TurnOrder...)
	sched := turn.RoundRobin{}

	assert.Equal(t, turn.NextActor, act(t, s, sched).Outcome)
	assert.Equal(t, start[1], s.Current)
	assert.Equal(t, turn.NextActor, act(t, s, sched).Outcome)
	assert.Equal(t, start[2], s.Current)

	prog := act(t, s, sched)
	assert.Equal(t, turn.NextRound, prog.Outcome)
	assert.Equal(t, 2, s.RoundIndex)
	assert.Equal(t, []string{start[1], start[2], start[0]}, s.TurnOrder)
	assert.Equal(t, start[1], s.Current)
	assert.False(t, s.AnyActed())

	act(t, s, sched)
	act(t, s, sched)
	prog = act(t, s, sched)
	assert.Equal(t, turn.GameOver, prog.Outcome)
	assert.Equal(t, session.PhaseFinished, s.Phase)
	assert.Equal(t, 6, s.TurnsTaken)

	_, err := sched.Advance(s)
	assert.Error(t, err)
}

func TestRoundRobin_ContinuesAfterFlagsCleared(t *testing.T) {
	s := playing(t, 1, "a", "b", "c")
	sched := turn.RoundRobin{}
	act(t, s, sched)
	second := s.Current

	// The round restarts mid-way: every flag is cleared and the current
	// player keeps the turn.
	s.ResetRoundFlags()
	act(t, s, sched)
	assert.NotEqual(t, second, s.Current)
	act(t, s, sched)
	prog := act(t, s, sched)
	assert.Equal(t, turn.GameOver, prog.Outcome)
}

func TestFreeRunning_RotatesEveryTurn(t *testing.T) {
	s := playing(t, 0, "a", "b", "c")
	start := append([]string(nil), s.TurnOrder...)
	sched := turn.FreeRunning{}

	prog, err := sched.Advance(s)
	require.NoError(t, err)
	assert.Equal(t, turn.NextActor, prog.Outcome)
	assert.Equal(t, start[1], s.Current)

	_, err = sched.Advance(s)
	require.NoError(t, err)
	assert.Equal(t, start[2], s.Current)

	prog, err = sched.Advance(s)
	require.NoError(t, err)
	assert.Equal(t, turn.NextRound, prog.Outcome)
	assert.Equal(t, start[0], s.Current)
	assert.Equal(t, 2, s.RoundIndex)
}

func TestProperty_TurnOrderStaysPermutation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 6).Draw(rt, "players")
		rounds := rapid.IntRange(1, 5).Draw(rt, "rounds")
		free := rapid.Bool().Draw(rt, "free")
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")

		s := session.New("t", session.KindDoublePig)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("p%d", i)
			if _, err := s.AddPlayer(ids[i], ids[i]); err != nil {
				rt.Fatal(err)
			}
		}
		_ = s.Advance(session.PhaseConfiguring)
		s.Config.Rounds = rounds
		_ = s.Advance(session.PhasePlaying)
		if err := turn.BeginPlaying(s, dice.NewCryptoSource()); err != nil {
			rt.Fatal(err)
		}

		var sched turn.Scheduler = turn.RoundRobin{}
		if free {
			sched = turn.FreeRunning{}
		}
		for i := 0; i < steps && s.Phase == session.PhasePlaying; i++ {
			p, _ := s.Player(s.Current)
			p.HasActed = true
			if _, err := sched.Advance(s); err != nil {
				rt.Fatal(err)
			}
			if err := s.CheckInvariants(); err != nil {
				rt.Fatal(err)
			}
			got := append([]string(nil), s.TurnOrder...)
			sort.Strings(got)
			for j := range got {
				if got[j] != ids[j] {
					rt.Fatalf("turn order %v is not a permutation of %v", s.TurnOrder, ids)
				}
			}
		}
		if !free && steps >= n*rounds && s.Phase != session.PhaseFinished {
			rt.Fatalf("round robin did not finish after %d steps", steps)
		}
	})
}
