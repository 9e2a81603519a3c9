package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIDPrefix marks generated bot user IDs that are not backed by an account.
const BotIDPrefix = "bot:"

// BotIdentity is the public profile of a bot seat.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
}

type registry struct {
	mu    sync.RWMutex
	pool  []BotIdentity
	byID  map[string]BotIdentity
	ready bool
}

var (
	bots          = &registry{byID: make(map[string]BotIdentity)}
	loadOnce      sync.Once
	loadErr       error
	provisionOnce sync.Once
)

// LoadIdentities reads the bot pool from a JSON file once per process.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var pool []BotIdentity
		if err := json.Unmarshal(data, &pool); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		RegisterIdentities(pool)
	})
	return loadErr
}

// RegisterIdentities replaces the bot pool.
func RegisterIdentities(pool []BotIdentity) {
	bots.mu.Lock()
	defer bots.mu.Unlock()
	bots.pool = append([]BotIdentity(nil), pool...)
	bots.byID = make(map[string]BotIdentity, len(pool))
	for _, identity := range pool {
		if identity.UserID != "" {
			bots.byID[identity.UserID] = identity
		}
	}
	bots.ready = len(pool) > 0
}

// ProvisionBots creates Nakama accounts for pool entries that carry a
// device ID and tags them with is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		bots.mu.Lock()
		defer bots.mu.Unlock()
		for i := range bots.pool {
			identity := &bots.pool[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":     true,
				"difficulty": identity.Difficulty,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}
			bots.byID[userID] = *identity

			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
}

// GetBotIdentity returns a pool identity by index (mod pool size), or a
// generated one when no pool is loaded.
func GetBotIdentity(index int, difficulty string) BotIdentity {
	bots.mu.RLock()
	defer bots.mu.RUnlock()
	if !bots.ready {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", BotIDPrefix, index),
			Username:    fmt.Sprintf("bot%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
			Difficulty:  difficulty,
		}
	}
	identity := bots.pool[index%len(bots.pool)]
	if identity.UserID == "" {
		identity.UserID = fmt.Sprintf("%s%s", BotIDPrefix, identity.Username)
	}
	if identity.Difficulty == "" {
		identity.Difficulty = difficulty
	}
	return identity
}

// IsBot reports whether the given user ID belongs to a bot.
func IsBot(userID string) bool {
	if strings.HasPrefix(userID, BotIDPrefix) {
		return true
	}
	bots.mu.RLock()
	defer bots.mu.RUnlock()
	_, ok := bots.byID[userID]
	return ok
}

// GetBotDisplayName returns the display name for a bot ID, or "" if unknown.
func GetBotDisplayName(userID string) string {
	bots.mu.RLock()
	defer bots.mu.RUnlock()
	identity, ok := bots.byID[userID]
	if !ok {
		return ""
	}
	if identity.DisplayName != "" {
		return identity.DisplayName
	}
	return identity.Username
}
