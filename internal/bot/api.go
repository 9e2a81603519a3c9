package bot

import (
	"morris/internal/domain"
)

// GameNode is a search result: a score from the mover's point of view and
// the move that reaches it. Leaves carry no move.
type GameNode struct {
	Score   int
	Move    domain.Move
	HasMove bool
}

// Reason explains how a Decision was reached.
type Reason string

const (
	// ReasonSearched means the move came from a completed search depth.
	ReasonSearched Reason = "searched"
	// ReasonFallback means no depth completed and the first legal move was taken.
	ReasonFallback Reason = "fallback"
	// ReasonGameOver means the position is already won by one side.
	ReasonGameOver Reason = "game_over"
	// ReasonNoMoves means the side to move has nothing legal to play.
	ReasonNoMoves Reason = "no_moves"
)

// Decision is what a Brain chose for the side to move.
type Decision struct {
	Move    domain.Move
	HasMove bool
	Score   int
	Depth   int
	Reason  Reason
}

// Brain is the interface that all bot strategies must implement.
// Decide must not modify the board.
type Brain interface {
	Decide(board *domain.Board) Decision
}
