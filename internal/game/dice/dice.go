// Package dice provides the randomness abstraction and roll-result types
// shared by every dice game on the bot.
package dice

import (
	"fmt"
	"strings"
)

// Faces is the number of sides on every die the games use.
const Faces = 6

// faceGlyphs maps a d6 value to its Unicode die face.
var faceGlyphs = [...]string{"", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

// Glyph returns the Unicode die face for v, or the decimal value when v is
// outside [1,6].
func Glyph(v int) string {
	if v < 1 || v > Faces {
		return fmt.Sprintf("%d", v)
	}
	return faceGlyphs[v]
}

// RollResult holds the audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice).
type RollResult struct {
	Expression string // original expression string, e.g. "2d6"
	Dice       []int  // individual die results
}

// Total returns the sum of all die results.
func (r RollResult) Total() int {
	total := 0
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// Glyphs renders the dice as Unicode faces separated by spaces.
func (r RollResult) Glyphs() string {
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = Glyph(d)
	}
	return strings.Join(parts, " ")
}

// String returns a human-readable audit string in the format:
//
//	"2d6 → [4 5] = 9"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v = %d", r.Expression, r.Dice, r.Total())
}

// Source is the randomness provider for dice rolls, shuffles and samples.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
