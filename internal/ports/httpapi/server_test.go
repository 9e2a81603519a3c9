package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"morris/internal/config"
	"morris/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	cfg := config.Defaults()
	srv := httptest.NewServer(NewServer(&cfg, zerolog.Nop(), opts...).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s error: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// White flies G4 to G1 for a mill and the win.
func finishingSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Turn:     "white",
		Cells:    "WW.B.B........W.......B.",
		Placed:   [2]int{3, 3},
		Unplaced: [2]int{0, 0},
	}
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/ping")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || !body["ok"] {
		t.Fatalf("ping body = %v, err = %v", body, err)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestAnalyze(t *testing.T) {
	srv := newTestServer(t)
	limit := int64(0)
	resp := postJSON(t, srv.URL+"/api/analyze", analyzeRequest{Board: finishingSnapshot(), Level: "hard", Depth: 2, TimeLimitMs: &limit})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !strings.HasPrefix(body.Move, "move G4 G1 cap ") || body.Depth != 2 || body.Reason != "searched" || body.Nodes == 0 {
		t.Fatalf("analyze = %+v", body)
	}
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)
	bad := finishingSnapshot()
	bad.Turn = "purple"

	tests := []struct {
		name string
		body any
	}{
		{name: "BadBoard", body: analyzeRequest{Board: bad}},
		{name: "BadLevel", body: analyzeRequest{Board: finishingSnapshot(), Level: "expert"}},
		{name: "NotAnObject", body: []int{1, 2}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if resp := postJSON(t, srv.URL+"/api/analyze", test.body); resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestMoves(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		snap      domain.Snapshot
		wantCount int
		wantStage string
		wantOver  bool
	}{
		{name: "Opening", snap: domain.NewBoard(domain.White).Snapshot(), wantCount: domain.PointCount, wantStage: domain.StagePlacement.String()},
		{name: "Decided", snap: domain.Snapshot{Turn: "black", Cells: "WWWB..................B.", Placed: [2]int{3, 2}}, wantStage: domain.StageFlying.String(), wantOver: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/moves", movesRequest{Board: test.snap})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			var body movesResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if len(body.Moves) != test.wantCount || body.Stage != test.wantStage || body.GameOver != test.wantOver {
				t.Fatalf("moves = %+v", body)
			}
			if test.wantOver && body.Winner != "white" {
				t.Fatalf("winner = %q, want white", body.Winner)
			}
		})
	}
}

func dialPlay(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/play"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	return msg
}

func TestPlaySession(t *testing.T) {
	conn := dialPlay(t, newTestServer(t))

	tests := []struct {
		line string
		want string
	}{
		{"new pvp", "New game started: pvp."},
		{"drop A1", "OK."},
		{"drop A1", "Illegal drop."},
	}
	for _, tt := range tests {
		if err := conn.WriteJSON(wsCommand{Line: tt.line}); err != nil {
			t.Fatalf("WriteJSON error: %v", err)
		}
		msg := readMessage(t, conn)
		if msg.Type != "output" || msg.Text != tt.want {
			t.Fatalf("reply to %q = %+v, want %q", tt.line, msg, tt.want)
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("WriteMessage error: %v", err)
	}
	if msg := readMessage(t, conn); msg.Text != "Invalid message." {
		t.Fatalf("reply to garbage = %+v", msg)
	}

	if err := conn.WriteJSON(wsCommand{Line: "board"}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Board == nil || msg.Board.Cells[0] != 'W' || msg.Board.Turn != "black" {
		t.Fatalf("board reply = %+v", msg)
	}

	if err := conn.WriteJSON(wsCommand{Line: "quit"}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "bye" {
		t.Fatalf("quit reply = %+v, want bye", msg)
	}
}

func TestPlayLoadsBoard(t *testing.T) {
	conn := dialPlay(t, newTestServer(t))

	bad := finishingSnapshot()
	bad.Turn = "purple"
	if err := conn.WriteJSON(wsCommand{Board: &bad}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "output" || !strings.Contains(msg.Text, "invalid turn") {
		t.Fatalf("reply to bad board = %+v", msg)
	}

	snap := finishingSnapshot()
	snap.Turn = "black"
	if err := conn.WriteJSON(wsCommand{Board: &snap}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	msg := readMessage(t, conn)
	if !strings.HasPrefix(msg.Text, "Position loaded.\nAI played: ") || msg.Board == nil {
		t.Fatalf("reply to loaded board = %+v", msg)
	}
	if !msg.Over && msg.Board.Turn != "white" {
		t.Fatalf("turn after AI reply = %q, want white", msg.Board.Turn)
	}
}

func TestPlayHeartbeat(t *testing.T) {
	conn := dialPlay(t, newTestServer(t, WithPingInterval(20*time.Millisecond)))
	if msg := readMessage(t, conn); msg.Type != "ping" {
		t.Fatalf("idle message = %+v, want ping", msg)
	}
}
