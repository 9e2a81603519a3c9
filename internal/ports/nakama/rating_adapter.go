package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"morris/internal/bot"
	"morris/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaRatingAdapter implements ports.RatingPort on the "rating" wallet key.
type NakamaRatingAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaRatingAdapter(nk runtime.NakamaModule) *NakamaRatingAdapter {
	return &NakamaRatingAdapter{nk: nk}
}

// Rating retrieves the current ladder points for a user.
func (a *NakamaRatingAdapter) Rating(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}
	return wallet[ratingWalletKey], nil
}

// RecordResult moves up to ports.RatingStake points from loser to winner.
// The stake shrinks to what the loser has so wallets never go negative.
func (a *NakamaRatingAdapter) RecordResult(ctx context.Context, winnerID, loserID string) error {
	stake := ports.RatingStake
	var updates []*runtime.WalletUpdate

	if loserID != "" && !bot.IsBot(loserID) {
		have, err := a.Rating(ctx, loserID)
		if err != nil {
			return err
		}
		stake = min(stake, have)
		if stake > 0 {
			updates = append(updates, &runtime.WalletUpdate{
				UserID:    loserID,
				Changeset: map[string]int64{ratingWalletKey: -stake},
				Metadata:  map[string]interface{}{"reason": "game_lost", "opponent": winnerID},
			})
		}
	}
	if winnerID != "" && !bot.IsBot(winnerID) && stake > 0 {
		updates = append(updates, &runtime.WalletUpdate{
			UserID:    winnerID,
			Changeset: map[string]int64{ratingWalletKey: stake},
			Metadata:  map[string]interface{}{"reason": "game_won", "opponent": loserID},
		})
	}
	if len(updates) == 0 {
		return nil
	}

	if _, err := a.nk.WalletsUpdate(ctx, updates, true); err != nil {
		return fmt.Errorf("failed to record result %s over %s: %w", winnerID, loserID, err)
	}
	return nil
}

var _ ports.RatingPort = (*NakamaRatingAdapter)(nil)
