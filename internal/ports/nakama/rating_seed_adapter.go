package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"morris/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaRatingSeedAdapter grants starting points using a storage marker
// written in the same transaction as the wallet update.
type NakamaRatingSeedAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaRatingSeedAdapter(nk runtime.NakamaModule) *NakamaRatingSeedAdapter {
	return &NakamaRatingSeedAdapter{nk: nk}
}

// SeedRatingOnce returns false when the marker already exists.
func (a *NakamaRatingSeedAdapter) SeedRatingOnce(ctx context.Context, userID string, points int64) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if points <= 0 {
		return false, fmt.Errorf("points must be positive")
	}

	marker := map[string]interface{}{
		"points":    points,
		"seeded_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(marker)
	if err != nil {
		return false, fmt.Errorf("failed to marshal rating marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      onboardingColl,
			Key:             startingRatingKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	walletUpdates := []*runtime.WalletUpdate{
		{
			UserID:    userID,
			Changeset: map[string]int64{ratingWalletKey: points},
			Metadata:  map[string]interface{}{"reason": "starting_rating"},
		},
	}

	if _, _, err := a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed rating: %w", err)
	}
	return true, nil
}

var _ ports.StartingRatingPort = (*NakamaRatingSeedAdapter)(nil)
