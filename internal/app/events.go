package app

import "morris/internal/domain"

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventGameStarted  EventKind = "game_started"
	EventMovePlayed   EventKind = "move_played"
	EventGameEnded    EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Color  domain.Player
	IsBot  bool
}

type PlayerLeftPayload struct {
	UserID string
}

type GameStartedPayload struct {
	Phase           domain.Phase
	WhiteUserID     string
	BlackUserID     string
	FirstTurnUserID string
	Board           domain.Snapshot
}

type MovePlayedPayload struct {
	UserID         string
	Color          domain.Player
	Move           domain.Move
	NextTurnUserID string
	Board          domain.Snapshot
}

type GameEndedPayload struct {
	Winner       domain.Player
	WinnerUserID string
	LoserUserID  string
	Resigned     bool
	Plies        int
}
