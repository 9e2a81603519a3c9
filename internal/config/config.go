package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"morris/internal/bot"
	"morris/internal/domain"
)

// LevelConfig is the search budget for one bot level.
type LevelConfig struct {
	MaxDepth    int `json:"max_depth"`
	TimeLimitMs int `json:"time_limit_ms"`
}

type EngineConfig struct {
	Eval   domain.EvalSettings    `json:"eval"`
	Levels map[string]LevelConfig `json:"levels"`
	// MoveLimit caps candidates per search node; 0 means no cap.
	MoveLimit int `json:"move_limit"`
	// BotDelayTicks is how many match ticks a bot waits before moving.
	BotDelayTicks   int   `json:"bot_delay_ticks"`
	TokenTTLSeconds int64 `json:"token_ttl_seconds"`
}

var (
	cfg      *EngineConfig
	loadOnce sync.Once
	loadErr  error
)

// Defaults returns the built-in configuration.
func Defaults() EngineConfig {
	return EngineConfig{
		Eval: domain.DefaultEvalSettings(),
		Levels: map[string]LevelConfig{
			"medium": {MaxDepth: 3, TimeLimitMs: 200},
			"hard":   {MaxDepth: 6, TimeLimitMs: 1000},
		},
		BotDelayTicks:   5,
		TokenTTLSeconds: 7 * 24 * 3600,
	}
}

// LoadEngineConfig loads the engine configuration from the given path.
// Fields missing from the file keep their defaults.
func LoadEngineConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read engine config: %w", err)
			return
		}

		c, err := ParseEngineConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// ParseEngineConfig decodes and validates a config document.
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	c := Defaults()
	if err := json.Unmarshal(data, &c); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to unmarshal engine config: %w", err)
	}
	if err := c.Eval.Validate(); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to validate engine config: %w", err)
	}
	for name := range c.Levels {
		if _, err := bot.ParseLevel(name); err != nil {
			return EngineConfig{}, fmt.Errorf("failed to validate engine config: %w", err)
		}
	}
	return c, nil
}

// GetEngineConfig returns the loaded configuration, or the defaults if
// nothing was loaded.
func GetEngineConfig() *EngineConfig {
	if cfg == nil {
		d := Defaults()
		return &d
	}
	return cfg
}

// Tuning converts the level table into bot tuning.
func (c *EngineConfig) Tuning() map[bot.BotLevel]bot.LevelTuning {
	out := make(map[bot.BotLevel]bot.LevelTuning, len(c.Levels))
	for name, lc := range c.Levels {
		level, err := bot.ParseLevel(name)
		if err != nil {
			continue
		}
		out[level] = bot.LevelTuning{
			MaxDepth:  lc.MaxDepth,
			TimeLimit: time.Duration(lc.TimeLimitMs) * time.Millisecond,
			MoveLimit: c.MoveLimit,
		}
	}
	return out
}

// TokenTTL returns the resume token lifetime.
func (c *EngineConfig) TokenTTL() time.Duration {
	if c.TokenTTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// Runtime env keys understood by the Nakama module.
const (
	EnvBotsEnabled = "morris_bots_enabled"
	EnvBotLevel    = "morris_bot_level"
	EnvTokenSecret = "morris_token_secret"
)

// Env holds the runtime overrides read from the Nakama env map.
type Env struct {
	BotsEnabled bool
	BotLevel    bot.BotLevel
	TokenSecret string
}

// ReadEnv applies env overrides on top of defaults. Unknown bot levels
// fall back to medium.
func ReadEnv(env map[string]string) Env {
	out := Env{BotsEnabled: true, BotLevel: bot.BotLevelMedium}
	if v, ok := env[EnvBotsEnabled]; ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "false", "0", "no", "off":
			out.BotsEnabled = false
		}
	}
	if level, err := bot.ParseLevel(env[EnvBotLevel]); err == nil {
		out.BotLevel = level
	}
	out.TokenSecret = env[EnvTokenSecret]
	return out
}
