package domain

// Phase represents the lifecycle stage of a hosted game.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active game state where moves are accepted.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after a game concludes.
	PhaseEnded Phase = "ended"
)

// Game holds authoritative state for one hosted game.
type Game struct {
	Phase Phase

	Board *Board
	Seats [2]string // indexed by Player; userId or ""

	History []Move
	Winner  Player
	// Resigned is set when the game ended by resignation rather than on the board.
	Resigned bool
}

// NewGame starts a game in the playing phase with White to move.
func NewGame(white, black string) *Game {
	return &Game{
		Phase:  PhasePlaying,
		Board:  NewBoard(White),
		Seats:  [2]string{White: white, Black: black},
		Winner: NoPlayer,
	}
}

// ResumeGame wraps an existing board, for example one rebuilt from a Snapshot.
func ResumeGame(board *Board, white, black string) *Game {
	g := &Game{
		Phase:  PhasePlaying,
		Board:  board,
		Seats:  [2]string{White: white, Black: black},
		Winner: NoPlayer,
	}
	g.CheckEnd()
	return g
}

// ColorOf returns the side played by userID.
func (g *Game) ColorOf(userID string) (Player, bool) {
	if userID == "" {
		return NoPlayer, false
	}
	for i, seat := range g.Seats {
		if seat == userID {
			return Player(i), true
		}
	}
	return NoPlayer, false
}

// CurrentUser returns the user whose turn it is.
func (g *Game) CurrentUser() string {
	return g.Seats[g.Board.Turn()]
}

// Play applies m and records it. Legality is the caller's concern.
func (g *Game) Play(m Move) {
	g.Board.Apply(m)
	g.History = append(g.History, m)
	g.CheckEnd()
}

// CheckEnd moves the game to PhaseEnded once either side has won. It also
// ends the game when the side to move has no legal move at all.
func (g *Game) CheckEnd() bool {
	if g.Phase == PhaseEnded {
		return true
	}
	if winner, ok := g.Board.GameOver(); ok {
		g.finish(winner)
		return true
	}
	if len(g.Board.Moves()) == 0 {
		g.finish(g.Board.Turn().Opponent())
		return true
	}
	return false
}

// Resign ends the game in favour of loser's opponent.
func (g *Game) Resign(loser Player) {
	g.Resigned = true
	g.finish(loser.Opponent())
}

func (g *Game) finish(winner Player) {
	g.Phase = PhaseEnded
	g.Winner = winner
}
