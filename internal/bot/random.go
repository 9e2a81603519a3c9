package bot

import (
	"morris/internal/domain"

	"lukechampine.com/frand"
)

// RandomBrain plays a uniformly random legal move, preferring captures
// when one is available.
type RandomBrain struct{}

func NewRandomBrain() *RandomBrain { return &RandomBrain{} }

func (r *RandomBrain) Decide(b *domain.Board) Decision {
	if _, over := b.GameOver(); over {
		return Decision{Reason: ReasonGameOver}
	}
	moves := b.Moves()
	if len(moves) == 0 {
		return Decision{Reason: ReasonNoMoves}
	}

	// Captures sort first; pick among them if any exist.
	n := 0
	for n < len(moves) && moves[n].HasCapture() {
		n++
	}
	if n == 0 {
		n = len(moves)
	}
	return Decision{Move: moves[frand.Intn(n)], HasMove: true, Reason: ReasonSearched}
}

var _ Brain = (*RandomBrain)(nil)
