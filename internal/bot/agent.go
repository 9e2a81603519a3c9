package bot

import (
	"errors"

	"morris/internal/domain"

	"github.com/rs/zerolog/log"
)

var ErrNotSeated = errors.New("agent is not seated in this game")

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Level    BotLevel
	Strategy Brain
}

// NewAgent builds an agent for the given identity. The identity's
// difficulty picks the level; tuning may be nil.
func NewAgent(identity BotIdentity, settings domain.EvalSettings, tuning map[BotLevel]LevelTuning) (*Agent, error) {
	level, err := ParseLevel(identity.Difficulty)
	if err != nil {
		return nil, err
	}
	brain, err := NewBrain(level, settings, tuning, log.Logger)
	if err != nil {
		return nil, err
	}
	return &Agent{
		ID:       identity.UserID,
		Name:     identity.DisplayName,
		Level:    level,
		Strategy: brain,
	}, nil
}

// Play asks the agent to choose its move for the current position.
// It returns ErrNotSeated if the agent does not hold the side to move.
func (a *Agent) Play(game *domain.Game) (Decision, error) {
	color, ok := game.ColorOf(a.ID)
	if !ok || color != game.Board.Turn() {
		return Decision{}, ErrNotSeated
	}
	return a.Strategy.Decide(game.Board), nil
}

// OnGameEnd resets per-game search memory.
func (a *Agent) OnGameEnd() {
	if c, ok := a.Strategy.(*Controller); ok {
		c.Forget()
	}
}

// Remember forwards the live position to a searching brain after a move.
func (a *Agent) Remember(b *domain.Board) {
	if c, ok := a.Strategy.(*Controller); ok {
		c.Remember(b)
	}
}
