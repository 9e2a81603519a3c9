package bot

import "time"

// LevelTuning is the search budget for one difficulty level.
type LevelTuning struct {
	MaxDepth  int
	TimeLimit time.Duration
	MoveLimit int
}

// DefaultTuning trades strength for latency per level. Easy does not search.
var DefaultTuning = map[BotLevel]LevelTuning{
	BotLevelMedium: {MaxDepth: DefaultMaxDepth, TimeLimit: DefaultTimeLimit},
	BotLevelHard:   {MaxDepth: 6, TimeLimit: time.Second},
}

// Options converts the tuning into controller options.
func (t LevelTuning) Options() []Option {
	return []Option{
		WithMaxDepth(t.MaxDepth),
		WithTimeLimit(t.TimeLimit),
		WithMoveLimit(t.MoveLimit),
	}
}
