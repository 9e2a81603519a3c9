package app

import (
	"errors"

	"morris/internal/bot"
	"morris/internal/domain"

	"lukechampine.com/frand"
)

// Service contains Nine Men's Morris use-cases operating on domain state.
type Service struct {
	flip func() bool
}

// NewService constructs a Service. flip decides whether the first player
// takes White in StartRandom; nil uses a fair coin.
func NewService(flip func() bool) *Service {
	if flip == nil {
		flip = func() bool { return frand.Intn(2) == 0 }
	}
	return &Service{flip: flip}
}

var (
	ErrNotPlaying    = errors.New("game not in playing phase")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrUnknownPlayer = errors.New("player not found")
	ErrGameOver      = errors.New("game is over")
	ErrTooFewPlayers = errors.New("two distinct players are required")
)

// NewGame starts a game with the given seats, White to move.
func (s *Service) NewGame(white, black string) (*domain.Game, []Event, error) {
	if white == "" || black == "" || white == black {
		return nil, nil, ErrTooFewPlayers
	}
	game := domain.NewGame(white, black)
	return game, []Event{startedEvent(game)}, nil
}

// StartRandom seats a and b on a coin flip.
func (s *Service) StartRandom(a, b string) (*domain.Game, []Event, error) {
	if s.flip() {
		return s.NewGame(a, b)
	}
	return s.NewGame(b, a)
}

// ResumeGame rebuilds a game from a snapshot. The returned game may already
// be over if the snapshot was a finished position.
func (s *Service) ResumeGame(snap domain.Snapshot, white, black string) (*domain.Game, []Event, error) {
	if white == "" || black == "" || white == black {
		return nil, nil, ErrTooFewPlayers
	}
	board, err := domain.FromSnapshot(snap)
	if err != nil {
		return nil, nil, err
	}
	game := domain.ResumeGame(board, white, black)
	events := []Event{startedEvent(game)}
	if game.Phase == domain.PhaseEnded {
		events = append(events, endedEvent(game))
	}
	return game, events, nil
}

// ApplyMove validates and plays a move on behalf of actorUserID.
func (s *Service) ApplyMove(game *domain.Game, actorUserID string, m domain.Move) ([]Event, error) {
	switch game.Phase {
	case domain.PhasePlaying:
	case domain.PhaseEnded:
		return nil, ErrGameOver
	default:
		return nil, ErrNotPlaying
	}
	color, ok := game.ColorOf(actorUserID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if color != game.Board.Turn() {
		return nil, ErrNotYourTurn
	}
	if !game.Board.IsLegal(m) {
		return nil, ErrIllegalMove
	}

	game.Play(m)
	events := []Event{
		{
			Kind: EventMovePlayed,
			Payload: MovePlayedPayload{
				UserID:         actorUserID,
				Color:          color,
				Move:           m,
				NextTurnUserID: game.CurrentUser(),
				Board:          game.Board.Snapshot(),
			},
		},
	}
	if game.Phase == domain.PhaseEnded {
		events = append(events, endedEvent(game))
	}
	return events, nil
}

// BotMove lets agent play its turn. A bot with nothing to play ends the game.
func (s *Service) BotMove(game *domain.Game, agent *bot.Agent) ([]Event, error) {
	if game.Phase == domain.PhaseEnded {
		return nil, ErrGameOver
	}
	d, err := agent.Play(game)
	if err != nil {
		return nil, err
	}
	if !d.HasMove {
		if game.CheckEnd() {
			return []Event{endedEvent(game)}, nil
		}
		return nil, ErrIllegalMove
	}
	events, err := s.ApplyMove(game, agent.ID, d.Move)
	if err != nil {
		return nil, err
	}
	agent.Remember(game.Board)
	if game.Phase == domain.PhaseEnded {
		agent.OnGameEnd()
	}
	return events, nil
}

// Resign ends the game in favour of actorUserID's opponent.
func (s *Service) Resign(game *domain.Game, actorUserID string) ([]Event, error) {
	if game.Phase == domain.PhaseEnded {
		return nil, ErrGameOver
	}
	color, ok := game.ColorOf(actorUserID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	game.Resign(color)
	return []Event{endedEvent(game)}, nil
}

// Leave handles a player dropping out. Leaving a live game forfeits it.
func (s *Service) Leave(game *domain.Game, userID string) []Event {
	events := []Event{{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{UserID: userID}}}
	if game == nil || game.Phase != domain.PhasePlaying {
		return events
	}
	if color, ok := game.ColorOf(userID); ok {
		game.Resign(color)
		events = append(events, endedEvent(game))
	}
	return events
}

func startedEvent(game *domain.Game) Event {
	return Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:           game.Phase,
			WhiteUserID:     game.Seats[domain.White],
			BlackUserID:     game.Seats[domain.Black],
			FirstTurnUserID: game.CurrentUser(),
			Board:           game.Board.Snapshot(),
		},
	}
}

func endedEvent(game *domain.Game) Event {
	p := GameEndedPayload{
		Winner:   game.Winner,
		Resigned: game.Resigned,
		Plies:    len(game.History),
	}
	if game.Winner != domain.NoPlayer {
		p.WinnerUserID = game.Seats[game.Winner]
		p.LoserUserID = game.Seats[game.Winner.Opponent()]
	}
	return Event{Kind: EventGameEnded, Payload: p}
}
