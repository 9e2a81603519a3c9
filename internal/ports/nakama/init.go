package nakama

import (
	"context"
	"database/sql"

	"morris/internal/bot"
	"morris/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadEngineConfig(engineConfigPath); err != nil {
		// Defaults keep the server playable without a config file.
		logger.Warn("Engine config not loaded, using defaults: %v", err)
	}
	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("Bot identities not loaded, using generated ids: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameMorris, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	bot.ProvisionBots(ctx, nk, logger)

	logger.Info("Morris Go module loaded.")
	return nil
}
