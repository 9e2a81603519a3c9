package bot

import (
	"fmt"
	"strings"

	"morris/internal/domain"

	"github.com/rs/zerolog"
)

// BotLevel selects a bot strategy.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelMedium
	BotLevelHard
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelEasy:
		return "easy"
	case BotLevelMedium:
		return "medium"
	case BotLevelHard:
		return "hard"
	default:
		return fmt.Sprintf("BotLevel(%d)", l)
	}
}

// ParseLevel accepts "easy", "medium" or "hard".
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return BotLevelEasy, nil
	case "medium", "":
		return BotLevelMedium, nil
	case "hard":
		return BotLevelHard, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", s)
	}
}

// NewBrain creates a new AI brain based on the specified level.
// tuning overrides DefaultTuning when it has an entry for the level.
func NewBrain(level BotLevel, settings domain.EvalSettings, tuning map[BotLevel]LevelTuning, logger zerolog.Logger) (Brain, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid eval settings: %w", err)
	}
	switch level {
	case BotLevelEasy:
		return NewRandomBrain(), nil
	case BotLevelMedium, BotLevelHard:
		t, ok := tuning[level]
		if !ok {
			t = DefaultTuning[level]
		}
		opts := append(t.Options(), WithEvalSettings(settings), WithLogger(logger.With().Str("level", level.String()).Logger()))
		return NewController(opts...), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
