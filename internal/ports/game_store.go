package ports

import (
	"context"

	"morris/internal/domain"
)

// GameStore persists one unfinished game per user.
type GameStore interface {
	SaveGame(ctx context.Context, userID string, snap domain.Snapshot) error
	// LoadGame returns found=false when the user has no saved game.
	LoadGame(ctx context.Context, userID string) (snap domain.Snapshot, found bool, err error)
	DeleteGame(ctx context.Context, userID string) error
}
