package app

import (
	"errors"
	"strings"
	"testing"

	"morris/internal/bot"
	"morris/internal/domain"
)

// White has A1 D1 G4 and can fly G4 to G1 to close the top row; Black is
// down to three pieces.
const finishingCells = "WW.B.B........W.......B."

func finishingSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Turn:     "white",
		Cells:    finishingCells,
		Placed:   [2]int{strings.Count(finishingCells, "W"), strings.Count(finishingCells, "B")},
		Unplaced: [2]int{0, 0},
	}
}

func TestNewGameRequiresTwoPlayers(t *testing.T) {
	svc := NewService(nil)
	tests := []struct{ white, black string }{
		{"", "b"},
		{"a", ""},
		{"a", "a"},
	}
	for _, tt := range tests {
		if _, _, err := svc.NewGame(tt.white, tt.black); !errors.Is(err, ErrTooFewPlayers) {
			t.Fatalf("NewGame(%q, %q) error = %v, want ErrTooFewPlayers", tt.white, tt.black, err)
		}
	}
}

func TestStartRandomSeats(t *testing.T) {
	svc := NewService(func() bool { return false })
	game, evs, err := svc.StartRandom("u1", "u2")
	if err != nil {
		t.Fatalf("start error: %v", err)
	}
	if game.Seats[domain.White] != "u2" || game.Seats[domain.Black] != "u1" {
		t.Fatalf("seats = %v, want [u2 u1]", game.Seats)
	}
	if len(evs) != 1 || evs[0].Kind != EventGameStarted {
		t.Fatalf("events = %+v, want one game_started", evs)
	}
	payload := evs[0].Payload.(GameStartedPayload)
	if payload.FirstTurnUserID != "u2" {
		t.Fatalf("first turn = %s, want u2", payload.FirstTurnUserID)
	}
}

func TestApplyMove(t *testing.T) {
	svc := NewService(nil)
	game, _, err := svc.NewGame("w", "b")
	if err != nil {
		t.Fatalf("new game error: %v", err)
	}

	if _, err := svc.ApplyMove(game, "b", domain.Drop(domain.A1)); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out of turn error = %v, want ErrNotYourTurn", err)
	}
	if _, err := svc.ApplyMove(game, "x", domain.Drop(domain.A1)); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("stranger error = %v, want ErrUnknownPlayer", err)
	}
	if _, err := svc.ApplyMove(game, "w", domain.Slide(domain.A1, domain.D1)); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("slide in placement error = %v, want ErrIllegalMove", err)
	}

	evs, err := svc.ApplyMove(game, "w", domain.Drop(domain.A1))
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventMovePlayed {
		t.Fatalf("events = %+v, want one move_played", evs)
	}
	payload := evs[0].Payload.(MovePlayedPayload)
	if payload.NextTurnUserID != "b" || payload.Color != domain.White {
		t.Fatalf("payload = %+v", payload)
	}
	if len(game.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(game.History))
	}
}

func TestApplyMoveEndsGame(t *testing.T) {
	svc := NewService(nil)
	game, evs, err := svc.ResumeGame(finishingSnapshot(), "w", "b")
	if err != nil {
		t.Fatalf("resume error: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("resume events = %d, want 1", len(evs))
	}

	evs, err = svc.ApplyMove(game, "w", domain.SlideCapture(domain.G4, domain.G1, domain.B2))
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if len(evs) != 2 || evs[1].Kind != EventGameEnded {
		t.Fatalf("events = %+v, want move_played then game_ended", evs)
	}
	ended := evs[1].Payload.(GameEndedPayload)
	if ended.WinnerUserID != "w" || ended.LoserUserID != "b" || ended.Resigned {
		t.Fatalf("ended payload = %+v", ended)
	}

	if _, err := svc.ApplyMove(game, "b", domain.Slide(domain.D7, domain.A7)); !errors.Is(err, ErrGameOver) {
		t.Fatalf("move after end error = %v, want ErrGameOver", err)
	}
}

func TestResumeFinishedGame(t *testing.T) {
	snap := finishingSnapshot()
	snap.Turn = "black"
	snap.Cells = "WWWB..................B."
	snap.Placed = [2]int{3, 2}

	_, evs, err := NewService(nil).ResumeGame(snap, "w", "b")
	if err != nil {
		t.Fatalf("resume error: %v", err)
	}
	if len(evs) != 2 || evs[1].Kind != EventGameEnded {
		t.Fatalf("events = %+v, want started and ended", evs)
	}
}

func TestResignAndLeave(t *testing.T) {
	svc := NewService(nil)
	game, _, _ := svc.NewGame("w", "b")

	if _, err := svc.Resign(game, "x"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("resign stranger error = %v, want ErrUnknownPlayer", err)
	}
	evs, err := svc.Resign(game, "w")
	if err != nil {
		t.Fatalf("resign error: %v", err)
	}
	ended := evs[0].Payload.(GameEndedPayload)
	if ended.WinnerUserID != "b" || !ended.Resigned {
		t.Fatalf("ended payload = %+v", ended)
	}

	game, _, _ = svc.NewGame("w", "b")
	evs = svc.Leave(game, "b")
	if len(evs) != 2 || evs[0].Kind != EventPlayerLeft || evs[1].Kind != EventGameEnded {
		t.Fatalf("leave events = %+v", evs)
	}
	if game.Winner != domain.White {
		t.Fatalf("winner = %v, want White", game.Winner)
	}
}

func TestBotMove(t *testing.T) {
	svc := NewService(nil)
	agent, err := bot.NewAgent(bot.BotIdentity{UserID: "bot:1", Difficulty: "easy"}, domain.DefaultEvalSettings(), nil)
	if err != nil {
		t.Fatalf("agent error: %v", err)
	}
	game, _, _ := svc.NewGame("w", agent.ID)

	if _, err := svc.BotMove(game, agent); !errors.Is(err, bot.ErrNotSeated) {
		t.Fatalf("bot out of turn error = %v, want ErrNotSeated", err)
	}
	if _, err := svc.ApplyMove(game, "w", domain.Drop(domain.A1)); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	evs, err := svc.BotMove(game, agent)
	if err != nil {
		t.Fatalf("bot move error: %v", err)
	}
	payload := evs[0].Payload.(MovePlayedPayload)
	if payload.UserID != agent.ID || game.Board.Turn() != domain.White {
		t.Fatalf("bot move payload = %+v", payload)
	}
}
