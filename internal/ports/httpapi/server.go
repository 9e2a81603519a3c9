package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"morris/internal/bot"
	"morris/internal/config"
	"morris/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const defaultPingInterval = 30 * time.Second

// Server is the standalone HTTP surface: stateless engine queries plus a
// websocket that drives one Session per connection.
type Server struct {
	cfg          *config.EngineConfig
	log          zerolog.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

type Option func(*Server)

// WithPingInterval sets how long a websocket may stay idle before the
// server writes a ping message.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

func NewServer(cfg *config.EngineConfig, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:          cfg,
		log:          logger,
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		pingInterval: defaultPingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/api/analyze", s.handleAnalyze)
	r.Post("/api/moves", s.handleMoves)
	r.Get("/ws/play", s.handlePlay)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http-request")
	})
}

type analyzeRequest struct {
	Board       domain.Snapshot `json:"board"`
	Level       string          `json:"level"`
	Depth       int             `json:"depth,omitempty"`
	TimeLimitMs *int64          `json:"time_limit_ms,omitempty"`
}

type analyzeResponse struct {
	Move      string `json:"move,omitempty"`
	Score     int    `json:"score"`
	Depth     int    `json:"depth"`
	Reason    string `json:"reason"`
	Nodes     int    `json:"nodes"`
	Truncated int    `json:"truncated"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type movesRequest struct {
	Board domain.Snapshot `json:"board"`
}

type movesResponse struct {
	Stage    string   `json:"stage"`
	Moves    []string `json:"moves"`
	GameOver bool     `json:"game_over"`
	Winner   string   `json:"winner,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	board, err := domain.FromSnapshot(payload.Board)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	level, err := bot.ParseLevel(payload.Level)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	tuning := s.cfg.Tuning()
	t, ok := tuning[level]
	if !ok {
		t = bot.DefaultTuning[level]
	}
	if payload.Depth > 0 {
		t.MaxDepth = payload.Depth
	}
	if payload.TimeLimitMs != nil {
		t.TimeLimit = time.Duration(*payload.TimeLimitMs) * time.Millisecond
	}
	tuning[level] = t

	brain, err := bot.NewBrain(level, s.cfg.Eval, tuning, s.log)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	start := time.Now()
	d := brain.Decide(board)
	resp := analyzeResponse{
		Score:     d.Score,
		Depth:     d.Depth,
		Reason:    string(d.Reason),
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if d.HasMove {
		resp.Move = d.Move.String()
	}
	if c, ok := brain.(*bot.Controller); ok {
		stats := c.Stats()
		resp.Nodes = stats.Nodes
		resp.Truncated = stats.Truncated
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	var payload movesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	board, err := domain.FromSnapshot(payload.Board)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := movesResponse{Stage: board.Stage().String(), Moves: make([]string, 0)}
	if winner, over := board.GameOver(); over {
		resp.GameOver = true
		resp.Winner = strings.ToLower(winner.String())
	} else {
		for _, m := range board.Moves() {
			resp.Moves = append(resp.Moves, m.String())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
