package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"morris/internal/app"
	"morris/internal/bot"
	"morris/internal/config"
	"morris/internal/domain"
	"morris/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"
)

// gRPC status codes used by runtime errors.
const (
	codeInvalidArgument  = 3
	codeNotFound         = 5
	codePermissionDenied = 7
	codeInternal         = 13
	codeUnauthenticated  = 16
)

var (
	errNoUser        = runtime.NewError("user id missing from context", codeUnauthenticated)
	errBadPayload    = runtime.NewError("invalid request payload", codeInvalidArgument)
	errNoSavedGame   = runtime.NewError("no saved game", codeNotFound)
	errTokenMismatch = runtime.NewError("resume token belongs to another user", codePermissionDenied)
)

// Seams replaced in tests.
var (
	newGameStore = func(nk runtime.NakamaModule) ports.GameStore {
		return NewNakamaGameStore(nk)
	}
	newBrain = bot.NewBrain
)

// AnalyzeRequest asks the engine for a move on a posted position.
type AnalyzeRequest struct {
	Board domain.Snapshot `json:"board"`
	Level string          `json:"level"`
}

type AnalyzeResponse struct {
	Move       string   `json:"move,omitempty"`
	Score      int      `json:"score"`
	Depth      int      `json:"depth"`
	Reason     string   `json:"reason"`
	LegalMoves []string `json:"legal_moves"`
	Nodes      int      `json:"nodes"`
}

type SaveGameRequest struct {
	Board domain.Snapshot `json:"board"`
}

type SaveGameResponse struct {
	Saved bool   `json:"saved"`
	Token string `json:"token,omitempty"`
}

type ResumeGameRequest struct {
	Token string `json:"token"`
}

func callerID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", errNoUser
	}
	return userID, nil
}

// tokenService returns nil when no signing secret is configured.
func tokenService(ctx context.Context) *app.TokenService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := config.ReadEnv(env).TokenSecret
	if secret == "" {
		return nil
	}
	return app.NewTokenService(secret, config.GetEngineConfig().TokenTTL())
}

func rpcAnalyze(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req AnalyzeRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", errBadPayload
	}
	board, err := domain.FromSnapshot(req.Board)
	if err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}
	level, err := bot.ParseLevel(req.Level)
	if err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}

	cfg := config.GetEngineConfig()
	brain, err := newBrain(level, cfg.Eval, cfg.Tuning(), zerolog.Nop())
	if err != nil {
		logger.Error("rpcAnalyze: Failed to build brain: %v", err)
		return "", runtime.NewError("engine unavailable", codeInternal)
	}

	d := brain.Decide(board)
	resp := AnalyzeResponse{
		Score:      d.Score,
		Depth:      d.Depth,
		Reason:     string(d.Reason),
		LegalMoves: make([]string, 0),
	}
	if d.HasMove {
		resp.Move = d.Move.String()
	}
	for _, m := range board.Moves() {
		resp.LegalMoves = append(resp.LegalMoves, m.String())
	}
	if c, ok := brain.(*bot.Controller); ok {
		resp.Nodes = c.Stats().Nodes
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func rpcSaveGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req SaveGameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", errBadPayload
	}
	if _, err := domain.FromSnapshot(req.Board); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}

	if err := newGameStore(nk).SaveGame(ctx, userID, req.Board); err != nil {
		logger.Error("rpcSaveGame: %v", err)
		return "", runtime.NewError("failed to save game", codeInternal)
	}

	resp := SaveGameResponse{Saved: true}
	if tokens := tokenService(ctx); tokens != nil {
		token, err := tokens.Issue(userID, req.Board)
		if err != nil {
			logger.Warn("rpcSaveGame: Failed to issue resume token for %s: %v", userID, err)
		} else {
			resp.Token = token
		}
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// rpcResumeGame creates a match seeded with the caller's saved position,
// read from a resume token when one is given or from storage otherwise.
func rpcResumeGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req ResumeGameRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", errBadPayload
		}
	}

	var snap domain.Snapshot
	if req.Token != "" {
		tokens := tokenService(ctx)
		if tokens == nil {
			return "", runtime.NewError("resume tokens are disabled", codeInvalidArgument)
		}
		owner, tokenSnap, err := tokens.Verify(req.Token)
		if err != nil {
			return "", runtime.NewError(err.Error(), codeInvalidArgument)
		}
		if owner != userID {
			return "", errTokenMismatch
		}
		snap = tokenSnap
	} else {
		stored, found, err := newGameStore(nk).LoadGame(ctx, userID)
		if err != nil {
			logger.Error("rpcResumeGame: %v", err)
			return "", runtime.NewError("failed to load game", codeInternal)
		}
		if !found {
			return "", errNoSavedGame
		}
		snap = stored
	}

	if _, err := domain.FromSnapshot(snap); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameMorris, map[string]interface{}{resumeSnapshotKey: string(raw)})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}
	logger.Info("rpcResumeGame: User %s resumed into match %s", userID, matchID)

	out, _ := json.Marshal(QuickMatchResponse{MatchID: matchID, IsNew: true})
	return string(out), nil
}
