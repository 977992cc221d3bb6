package dice_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
)

// fixedSrc always returns val clamped into [0, n).
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6", Dice: []int{4, 5}}
	assert.Equal(t, 9, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6", Dice: []int{4, 5}}
	assert.Equal(t, "2d6 → [4 5] = 9", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_Glyphs(t *testing.T) {
	r := dice.RollResult{Expression: "2d6", Dice: []int{1, 6}}
	assert.Equal(t, "⚀ ⚅", r.Glyphs())
	assert.Equal(t, "7", dice.Glyph(7))
}

func TestParse(t *testing.T) {
	e, err := dice.Parse("2d6")
	require.NoError(t, err)
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, 6, e.Sides)

	e, err = dice.Parse("D6")
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count)

	for _, bad := range []string{"", "6", "0d6", "xd6", "2d1", "2dx"} {
		_, err := dice.Parse(bad)
		assert.Error(t, err, "expression %q should be rejected", bad)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestRoll_UsesSource(t *testing.T) {
	res := dice.Roll(dice.D6(3), fixedSrc{val: 2})
	assert.Equal(t, []int{3, 3, 3}, res.Dice)
	assert.Equal(t, "3d6", res.Expression)
}

func TestRoll_Property_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "count")
		res := dice.Roll(dice.D6(n), src)
		require.Len(rt, res.Dice, n)
		for _, d := range res.Dice {
			if d < 1 || d > 6 {
				rt.Fatalf("die value %d outside [1,6]", d)
			}
		}
	})
}

func TestPerm_Property_IsPermutation(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "n")
		p := dice.Perm(src, n)
		sorted := append([]int(nil), p...)
		sort.Ints(sorted)
		for i, v := range sorted {
			if v != i {
				rt.Fatalf("Perm(%d) = %v is not a permutation", n, p)
			}
		}
	})
}

func TestSample_Property_Distinct(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 16).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")
		got := dice.Sample(src, n, k)
		require.Len(rt, got, k)
		seen := make(map[int]bool, k)
		for _, v := range got {
			if v < 0 || v >= n || seen[v] {
				rt.Fatalf("Sample(%d,%d) = %v has invalid or repeated index", n, k, got)
			}
			seen[v] = true
		}
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestRoller_RollExpr(t *testing.T) {
	r := dice.NewLoggedRoller(fixedSrc{val: 0}, zaptest.NewLogger(t))
	res, err := r.RollExpr("2d6")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, res.Dice)
	assert.True(t, strings.HasPrefix(res.String(), "2d6"))

	_, err = r.RollExpr("bogus")
	assert.Error(t, err)
	assert.NotNil(t, r.Source())
}
