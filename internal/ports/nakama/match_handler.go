package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"morris/internal/app"
	"morris/internal/bot"
	"morris/internal/config"
	"morris/internal/domain"
	"morris/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	// Seats lists seated user IDs. Before a game starts they are in join
	// order; once it starts they are indexed by domain.Player.
	Seats     [2]string                   `json:"seats"`
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"`
	App       *app.Service                `json:"-"`
	Game      *domain.Game                `json:"-"` // nil while in lobby
	// Pending is a saved position the next game resumes from.
	Pending *domain.Snapshot `json:"-"`

	BotsEnabled          bool                  `json:"bots_enabled"`
	BotLevel             bot.BotLevel          `json:"bot_level"`
	BotDelayTicks        int                   `json:"bot_delay_ticks"`
	AutoFillTicks        int                   `json:"auto_fill_ticks"`
	BotWaitUntil         int64                 `json:"bot_wait_until"`
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"`
	Bots                 map[string]*bot.Agent `json:"-"`

	Settings domain.EvalSettings              `json:"-"`
	Tuning   map[bot.BotLevel]bot.LevelTuning `json:"-"`
	Ratings  ports.RatingPort                 `json:"-"`
	Store    ports.GameStore                  `json:"-"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) inGame() bool {
	return ms.Game != nil && ms.Game.Phase == domain.PhasePlaying
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// newMatchState builds the initial state from engine config and runtime env.
func newMatchState(env map[string]string, cfg *config.EngineConfig) *MatchState {
	overrides := config.ReadEnv(env)
	return &MatchState{
		Presences:     make(map[string]runtime.Presence),
		App:           app.NewService(nil),
		BotsEnabled:   overrides.BotsEnabled,
		BotLevel:      overrides.BotLevel,
		BotDelayTicks: cfg.BotDelayTicks,
		AutoFillTicks: matchAutoFillTicks,
		Bots:          make(map[string]*bot.Agent),
		Settings:      cfg.Eval,
		Tuning:        cfg.Tuning(),
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	state := newMatchState(env, config.GetEngineConfig())
	if nk != nil {
		state.Ratings = NewNakamaRatingAdapter(nk)
		state.Store = NewNakamaGameStore(nk)
	}

	if raw, ok := params[resumeSnapshotKey].(string); ok && raw != "" {
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			logger.Warn("MatchInit: Ignoring invalid resume snapshot: %v", err)
		} else {
			state.Pending = &snap
		}
	}

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Seated players may reconnect.
	if matchState.seatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.GetOpenSeatsCount() > 0 {
		return state, true, ""
	}
	// A bot gives its seat up to a human between games.
	if !matchState.inGame() {
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				return state, true, ""
			}
		}
	}
	return state, false, "Match full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	seated := false
	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if matchState.seatOf(userID) >= 0 {
			logger.Debug("MatchJoin: User %s reconnected.", userID)
			continue
		}
		if !mh.assignSeat(matchState, userID, logger) {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
			continue
		}
		seated = true
		mh.broadcastEvent(ctx, matchState, dispatcher, logger, app.Event{
			Kind:    app.EventPlayerJoined,
			Payload: app.PlayerJoinedPayload{UserID: userID, Color: domain.NoPlayer},
		})
	}

	if seated && !matchState.inGame() && matchState.GetOpenSeatsCount() == 0 {
		mh.startGame(ctx, matchState, dispatcher, logger)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) assignSeat(state *MatchState, userID string, logger runtime.Logger) bool {
	for i, seat := range state.Seats {
		if seat == "" {
			state.Seats[i] = userID
			return true
		}
	}
	if state.inGame() {
		return false
	}
	for i, seat := range state.Seats {
		if isBotUserId(seat) {
			logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seat, userID, i)
			delete(state.Bots, seat)
			state.Seats[i] = userID
			return true
		}
	}
	return false
}

// MatchLeave is called when one or more players leave the match. Leaving a
// live game forfeits it.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		for _, ev := range matchState.App.Leave(matchState.Game, userID) {
			mh.broadcastEvent(ctx, matchState, dispatcher, logger, ev)
		}
		if matchState.Game == nil || matchState.Game.Phase == domain.PhaseEnded {
			if i := matchState.seatOf(userID); i >= 0 {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, i)
			}
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) || len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpPlayMove:
			mh.handlePlayMove(ctx, matchState, dispatcher, logger, msg)
		case OpResign:
			mh.handleResign(ctx, matchState, dispatcher, logger, msg)
		case OpRequestNewGame:
			mh.handleNewGame(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) startGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var (
		game   *domain.Game
		events []app.Event
		err    error
	)
	if state.Pending != nil {
		// Whoever asked to resume sits first and keeps White.
		game, events, err = state.App.ResumeGame(*state.Pending, state.Seats[0], state.Seats[1])
		state.Pending = nil
	} else {
		game, events, err = state.App.StartRandom(state.Seats[0], state.Seats[1])
	}
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		return
	}

	state.Game = game
	state.Seats = game.Seats
	state.BotWaitUntil = 0
	for _, agent := range state.Bots {
		agent.OnGameEnd()
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
	logger.Info("StartGame: Game started, white=%s black=%s.", game.Seats[domain.White], game.Seats[domain.Black])
}

func (mh *matchHandler) handlePlayMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handlePlayMove: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNotPlaying.Error())
		return
	}

	move, err := decodeMove(msg.GetData())
	if err != nil {
		logger.Warn("handlePlayMove: User %s sent a bad move: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.ApplyMove(state.Game, senderID, move)
	if err != nil {
		logger.Warn("handlePlayMove: User %s failed to play %v: %v", senderID, move, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleResign(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNotPlaying.Error())
		return
	}
	events, err := state.App.Resign(state.Game, senderID)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// handleNewGame starts a rematch once the previous game has ended.
func (mh *matchHandler) handleNewGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOf(senderID) < 0 {
		mh.sendError(state, dispatcher, logger, senderID, 403, app.ErrUnknownPlayer.Error())
		return
	}
	if state.Game != nil && state.Game.Phase != domain.PhaseEnded {
		mh.sendError(state, dispatcher, logger, senderID, 409, "game still in progress")
		return
	}
	if state.GetOpenSeatsCount() > 0 {
		mh.sendError(state, dispatcher, logger, senderID, 409, app.ErrTooFewPlayers.Error())
		return
	}
	mh.startGame(ctx, state, dispatcher, logger)
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrUnknownPlayer):
		return 403
	case errors.Is(err, app.ErrNotYourTurn), errors.Is(err, app.ErrGameOver), errors.Is(err, app.ErrNotPlaying):
		return 409
	default:
		return 400
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Fill the empty seat of a solo human after a delay.
	if state.Game == nil || state.Game.Phase == domain.PhaseEnded {
		if state.GetHumanPlayerCount() == 1 && state.GetOpenSeatsCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.AutoFillTicks) {
				state.LastSinglePlayerTick = 0
				if mh.addBot(state, logger) {
					mh.startGame(ctx, state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Bot turns.
	if state.Game.Phase != domain.PhasePlaying {
		return
	}
	currentUserID := state.Game.CurrentUser()
	agent, isBot := state.Bots[currentUserID]
	if !isBot {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		state.BotWaitUntil = state.Tick + int64(state.BotDelayTicks)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", currentUserID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	events, err := state.App.BotMove(state.Game, agent)
	if err != nil {
		logger.Error("processBots: Bot %s failed to move: %v", currentUserID, err)
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) addBot(state *MatchState, logger runtime.Logger) bool {
	for i, seat := range state.Seats {
		if seat != "" {
			continue
		}
		identity := bot.GetBotIdentity(int(state.Tick)+i, state.BotLevel.String())
		// The match level wins over the pool entry's own difficulty.
		identity.Difficulty = state.BotLevel.String()
		agent, err := bot.NewAgent(identity, state.Settings, state.Tuning)
		if err != nil {
			logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
			return false
		}
		state.Seats[i] = identity.UserID
		state.Bots[identity.UserID] = agent
		logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
		return true
	}
	return false
}

// broadcastMatchState sends the seat table and, during a game, the board.
func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	players := make([]interface{}, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		displayName := userID
		if p, ok := state.Presences[userID]; ok {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			displayName = name
		}
		players = append(players, map[string]interface{}{
			"user_id":      userID,
			"seat":         i,
			"display_name": displayName,
			"is_bot":       isBotUserId(userID),
		})
	}

	fields := map[string]interface{}{
		"tick":    state.Tick,
		"players": players,
		"phase":   phaseOf(state),
	}
	if state.Game != nil {
		fields["board"] = snapshotToMap(state.Game.Board.Snapshot())
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to build snapshot: %v", err)
		return
	}
	data, err := proto.Marshal(st)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	if ev.Kind == app.EventGameEnded {
		mh.settleGame(ctx, state, logger, ev.Payload.(app.GameEndedPayload))
		defer mh.updateLabel(state, dispatcher, logger)
	}

	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to encode event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events never fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// settleGame records the result and clears saved positions of both humans.
func (mh *matchHandler) settleGame(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameEndedPayload) {
	if state.Ratings != nil && p.WinnerUserID != "" {
		if err := state.Ratings.RecordResult(ctx, p.WinnerUserID, p.LoserUserID); err != nil {
			logger.Error("Failed to record result: %v", err)
		}
	}
	if state.Store != nil {
		for _, userID := range state.Seats {
			if userID == "" || isBotUserId(userID) {
				continue
			}
			if err := state.Store.DeleteGame(ctx, userID); err != nil {
				logger.Warn("Failed to clear saved game for %s: %v", userID, err)
			}
		}
	}
	for _, agent := range state.Bots {
		agent.OnGameEnd()
	}
	logger.Info("GameEnded: winner=%s loser=%s resigned=%t plies=%d", p.WinnerUserID, p.LoserUserID, p.Resigned, p.Plies)
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := encodeError(code, message)
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func phaseOf(state *MatchState) string {
	if state.Game == nil {
		return string(domain.PhaseLobby)
	}
	return string(state.Game.Phase)
}

func buildLabel(state *MatchState) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		LabelKeyGame:  GameLabel,
		LabelKeyOpen:  state.GetOpenSeatsCount(),
		LabelKeyPhase: phaseOf(state),
	})
	if err != nil {
		return "", err
	}
	data, err := protojson.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

// MatchTerminate saves live games so both humans can resume them later.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating, grace %d seconds", graceSeconds)
	matchState, ok := state.(*MatchState)
	if !ok || matchState.Game == nil || matchState.Game.Phase != domain.PhasePlaying || matchState.Store == nil {
		return state
	}
	snap := matchState.Game.Board.Snapshot()
	for _, userID := range matchState.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		if err := matchState.Store.SaveGame(ctx, userID, snap); err != nil {
			logger.Error("MatchTerminate: Failed to save game for %s: %v", userID, err)
		}
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
