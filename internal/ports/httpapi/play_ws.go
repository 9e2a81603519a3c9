package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"morris/internal/app"
	"morris/internal/domain"

	"github.com/gorilla/websocket"
)

// Client -> server: {"line": "drop D1"}, or {"board": {...}} to load a
// position.
type wsCommand struct {
	Line  string           `json:"line,omitempty"`
	Board *domain.Snapshot `json:"board,omitempty"`
}

// Server -> client. Type is "output", "ping" or "bye".
type wsMessage struct {
	Type  string           `json:"type"`
	Text  string           `json:"text,omitempty"`
	Board *domain.Snapshot `json:"board,omitempty"`
	Over  bool             `json:"over,omitempty"`
}

// handlePlay runs a text Session over the socket. Every command or loaded
// board gets one output message carrying the board after it.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("ws-upgrade-failed")
		return
	}
	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	session := app.NewSession(s.cfg.Eval, log)
	send := make(chan []byte, 16)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.writeWithHeartbeat(conn, send); err != nil {
			log.Debug().Err(err).Msg("ws-write-stopped")
		}
	}()

	defer func() {
		close(send)
		<-done
		conn.Close()
	}()

	push := func(msg wsMessage) bool {
		select {
		case send <- mustMarshal(msg):
			return true
		case <-done:
			return false
		}
	}

	log.Info().Msg("ws-session-opened")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("ws-read-stopped")
			}
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			if !push(wsMessage{Type: "output", Text: "Invalid message."}) {
				return
			}
			continue
		}

		var out string
		if cmd.Board != nil {
			out, err = session.Load(*cmd.Board)
		} else {
			out, err = session.Exec(cmd.Line)
		}
		if errors.Is(err, app.ErrQuit) {
			push(wsMessage{Type: "bye"})
			log.Info().Msg("ws-session-closed")
			return
		}
		if err != nil {
			out = err.Error()
		}
		snap := session.Board().Snapshot()
		if !push(wsMessage{Type: "output", Text: out, Board: &snap, Over: session.Over()}) {
			return
		}
	}
}

// writeWithHeartbeat drains send and writes a ping message whenever the
// connection has been idle for the ping interval.
func (s *Server) writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < s.pingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
