package ports

import "context"

// Rating points moved from loser to winner per decided game.
const RatingStake int64 = 10

// RatingPort keeps a simple points ladder for finished games.
type RatingPort interface {
	// Rating returns the current points of userID.
	Rating(ctx context.Context, userID string) (int64, error)

	// RecordResult moves RatingStake points from loser to winner in one
	// atomic update. Bot IDs are skipped by implementations.
	RecordResult(ctx context.Context, winnerID, loserID string) error
}

// StartingRatingPort seeds a new player's ladder points at most once.
type StartingRatingPort interface {
	// SeedRatingOnce grants the starting points. Returns seeded=false when
	// the user was already seeded.
	SeedRatingOnce(ctx context.Context, userID string, points int64) (bool, error)
}
