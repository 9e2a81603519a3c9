package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"morris/internal/domain"
	"morris/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaGameStore implements ports.GameStore on Nakama storage, one object
// per user. Owners may read their game; only the server writes it.
type NakamaGameStore struct {
	nk runtime.NakamaModule
}

func NewNakamaGameStore(nk runtime.NakamaModule) *NakamaGameStore {
	return &NakamaGameStore{nk: nk}
}

func (s *NakamaGameStore) SaveGame(ctx context.Context, userID string, snap domain.Snapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      gameStoreColl,
			Key:             gameStoreKey,
			UserID:          userID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save game for %s: %w", userID, err)
	}
	return nil
}

func (s *NakamaGameStore) LoadGame(ctx context.Context, userID string) (domain.Snapshot, bool, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: gameStoreColl, Key: gameStoreKey, UserID: userID},
	})
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to load game for %s: %w", userID, err)
	}
	if len(objects) == 0 {
		return domain.Snapshot{}, false, nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to unmarshal saved game: %w", err)
	}
	return snap, true, nil
}

func (s *NakamaGameStore) DeleteGame(ctx context.Context, userID string) error {
	err := s.nk.StorageDelete(ctx, []*runtime.StorageDelete{
		{Collection: gameStoreColl, Key: gameStoreKey, UserID: userID},
	})
	if err != nil {
		return fmt.Errorf("failed to delete game for %s: %w", userID, err)
	}
	return nil
}

var _ ports.GameStore = (*NakamaGameStore)(nil)
