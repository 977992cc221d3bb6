// Package pool models the finite shared box of white and black dice that
// players draw from during a Black & White round.
package pool

import (
	"errors"
	"fmt"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
)

// ErrDepleted is returned by Draw when the pool cannot satisfy the request.
var ErrDepleted = errors.New("draw pool depleted")

// Polarity tags a token as adding to or subtracting from a player's score.
type Polarity int

const (
	Positive Polarity = iota // white die
	Negative                 // black die
)

// String returns "white" or "black".
func (p Polarity) String() string {
	if p == Positive {
		return "white"
	}
	return "black"
}

// Symbol returns the board glyph for the polarity.
func (p Polarity) Symbol() string {
	if p == Positive {
		return "⚪"
	}
	return "⚫"
}

// Token is one die in the pool. IDs are stable for the lifetime of the pool
// so a round's draws can be audited for overlap.
type Token struct {
	ID       int
	Polarity Polarity
}

// DrawPool is a depleting multiset of tokens. It is not safe for concurrent
// use; the owning session's lock serialises access.
//
// Invariant: after Refill, Remaining() == Size() with Size()/2 tokens of each polarity.
type DrawPool struct {
	size   int
	tokens []Token
}

// New creates a full pool of size tokens.
//
// Precondition: size must be positive and even.
// Postcondition: Returns a full pool or an error.
func New(size int) (*DrawPool, error) {
	if size <= 0 || size%2 != 0 {
		return nil, fmt.Errorf("pool size must be a positive even number, got %d", size)
	}
	p := &DrawPool{size: size}
	p.Refill()
	return p, nil
}

// Refill restores the full initial composition: half positive, half negative.
func (p *DrawPool) Refill() {
	p.tokens = make([]Token, 0, p.size)
	for i := 0; i < p.size; i++ {
		pol := Positive
		if i >= p.size/2 {
			pol = Negative
		}
		p.tokens = append(p.tokens, Token{ID: i, Polarity: pol})
	}
}

// Size returns the token count of a full pool.
func (p *DrawPool) Size() int { return p.size }

// Remaining returns the number of tokens still in the pool.
func (p *DrawPool) Remaining() int { return len(p.tokens) }

// Draw removes count tokens chosen uniformly at random without replacement.
//
// Postcondition: Returns exactly count tokens and shrinks the pool by count,
// or returns ErrDepleted and leaves the pool untouched when count <= 0 or
// count > Remaining().
func (p *DrawPool) Draw(count int, src dice.Source) ([]Token, error) {
	if count <= 0 || count > len(p.tokens) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDepleted, count, len(p.tokens))
	}
	picked := dice.Sample(src, len(p.tokens), count)
	chosen := make([]Token, count)
	taken := make(map[int]bool, count)
	for i, idx := range picked {
		chosen[i] = p.tokens[idx]
		taken[idx] = true
	}
	rest := make([]Token, 0, len(p.tokens)-count)
	for i, tok := range p.tokens {
		if !taken[i] {
			rest = append(rest, tok)
		}
	}
	p.tokens = rest
	return chosen, nil
}

// Clone returns an independent copy of the pool.
func (p *DrawPool) Clone() *DrawPool {
	if p == nil {
		return nil
	}
	return &DrawPool{size: p.size, tokens: append([]Token(nil), p.tokens...)}
}

// MinSize returns the smallest pool that lets every player of a round draw
// before it runs dry: two tokens each once more than two play.
func MinSize(players int) int {
	if players <= 2 {
		return 0
	}
	return 2 * players
}

// DrawSize returns how many tokens the next draw takes.
//
// With exactly two players the first drawer of the round takes half of a full
// pool and the second takes whatever remains. With three or more players every
// draw takes min(2, remaining).
func DrawSize(players int, firstDrawer bool, size, remaining int) int {
	if players == 2 {
		if firstDrawer {
			return size / 2
		}
		return remaining
	}
	return min(2, remaining)
}
