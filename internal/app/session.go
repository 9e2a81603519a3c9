package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"morris/internal/bot"
	"morris/internal/domain"

	"github.com/rs/zerolog"
)

// ErrQuit is returned by Session.Exec when the user asks to leave.
var ErrQuit = errors.New("quit")

type Mode string

const (
	ModeAI  Mode = "ai"
	ModePvP Mode = "pvp"
)

// Session is a line-oriented game driver. In ai mode the human plays White
// and the controller answers as Black after every human move.
type Session struct {
	mode      Mode
	depth     int
	timeLimit time.Duration
	settings  domain.EvalSettings
	log       zerolog.Logger

	board *domain.Board
	ai    *bot.Controller
	over  bool
}

// NewSession starts an ai-mode game.
func NewSession(settings domain.EvalSettings, logger zerolog.Logger) *Session {
	s := &Session{
		mode:      ModeAI,
		depth:     DefaultSessionDepth,
		timeLimit: DefaultSessionTimeLimit,
		settings:  settings,
		log:       logger,
	}
	s.reset()
	return s
}

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) Board() *domain.Board { return s.board }

func (s *Session) Over() bool { return s.over }

func (s *Session) reset() {
	s.board = domain.NewBoard(domain.White)
	s.over = false
	s.ai = nil
	if s.mode == ModeAI {
		s.ai = bot.NewController(
			bot.WithMaxDepth(s.depth),
			bot.WithTimeLimit(s.timeLimit),
			bot.WithEvalSettings(s.settings),
			bot.WithLogger(s.log),
		)
	}
}

// Load replaces the current position, keeping the mode and AI settings.
// In ai mode the computer answers at once when the position has Black to
// move.
func (s *Session) Load(snap domain.Snapshot) (string, error) {
	board, err := domain.FromSnapshot(snap)
	if err != nil {
		return "", err
	}
	s.reset()
	s.board = board
	if msg, over := s.checkOver(); over {
		return "Position loaded.\n" + msg, nil
	}
	if s.mode != ModeAI || s.board.Turn() != domain.Black {
		return "Position loaded.", nil
	}
	return "Position loaded.\n" + s.aiReply(), nil
}

// Exec runs one command line and returns the text to show.
func (s *Session) Exec(line string) (string, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil
	}

	switch op := strings.ToLower(parts[0]); op {
	case "q", "quit", "exit":
		return "", ErrQuit
	case "h", "help", "?":
		return helpText, nil
	case "board":
		return s.board.String(), nil
	case "new":
		return s.newGame(parts[1:]), nil
	case "set":
		return s.set(parts[1:]), nil
	case "moves":
		return s.listMoves(), nil
	case "drop", "move":
		if s.over {
			return "Game over. Type `new ai` or `new pvp` to start again.", nil
		}
		m, msg := s.resolve(op, parts[1:])
		if msg != "" {
			return msg, nil
		}
		return s.play(m), nil
	default:
		return "Unknown command. Type `help`.", nil
	}
}

func (s *Session) newGame(args []string) string {
	if len(args) != 1 {
		return "Usage: new ai|pvp"
	}
	mode := Mode(strings.ToLower(args[0]))
	if mode != ModeAI && mode != ModePvP {
		return "Usage: new ai|pvp"
	}
	s.mode = mode
	s.reset()
	return fmt.Sprintf("New game started: %s.", mode)
}

func (s *Session) set(args []string) string {
	const usage = "Usage: set depth <n> | set time <ms>"
	if len(args) != 2 {
		return usage
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return usage
	}
	switch strings.ToLower(args[0]) {
	case "depth":
		s.depth = max(1, n)
		if s.ai != nil {
			s.ai.SetMaxDepth(s.depth)
		}
		return fmt.Sprintf("depth=%d", s.depth)
	case "time":
		s.timeLimit = time.Duration(max(0, n)) * time.Millisecond
		if s.ai != nil {
			s.ai.SetTimeLimit(s.timeLimit)
		}
		return fmt.Sprintf("time_limit_ms=%d", s.timeLimit.Milliseconds())
	default:
		return usage
	}
}

func (s *Session) listMoves() string {
	moves := s.board.Moves()
	if len(moves) == 0 {
		return "No legal moves."
	}
	var sb strings.Builder
	sb.WriteString("Legal moves:")
	for i, m := range moves {
		if i == maxListedMoves {
			fmt.Fprintf(&sb, "\n  ... (%d more)", len(moves)-maxListedMoves)
			break
		}
		sb.WriteString("\n  ")
		sb.WriteString(m.String())
	}
	return sb.String()
}

// resolve turns drop/move arguments into a legal move, or a message
// explaining why it cannot.
func (s *Session) resolve(op string, args []string) (domain.Move, string) {
	want := 1
	usage := "Usage: drop <POS> [cap <POS>]"
	if op == "move" {
		want = 2
		usage = "Usage: move <FROM> <TO> [cap <POS>]"
	}
	if len(args) < want {
		return domain.Move{}, usage
	}

	points := make([]domain.Point, 0, 3)
	for i, arg := range args {
		if i == want && strings.EqualFold(arg, "cap") {
			if len(args) != want+2 {
				return domain.Move{}, usage
			}
			continue
		}
		p, err := domain.ParsePoint(arg)
		if err != nil {
			return domain.Move{}, fmt.Sprintf("Unknown position %q.", arg)
		}
		points = append(points, p)
	}
	if len(points) > want+1 {
		return domain.Move{}, usage
	}

	var start domain.Point = domain.NoPoint
	end := points[0]
	if op == "move" {
		start, end = points[0], points[1]
	}

	if len(points) == want+1 {
		capture := points[want]
		m := domain.DropCapture(end, capture)
		if op == "move" {
			m = domain.SlideCapture(start, end, capture)
		}
		if !s.board.IsLegal(m) {
			return domain.Move{}, fmt.Sprintf("Illegal %s+capture.", op)
		}
		return m, ""
	}

	m := domain.Drop(end)
	if op == "move" {
		m = domain.Slide(start, end)
	}
	if s.board.IsLegal(m) {
		return m, ""
	}

	var options []string
	for _, c := range s.board.Moves() {
		if !c.HasCapture() || c.End() != end {
			continue
		}
		if op == "move" && (c.IsDrop() || c.Start() != start) {
			continue
		}
		if op == "drop" && !c.IsDrop() {
			continue
		}
		options = append(options, c.Capture().String())
	}
	if len(options) == 0 {
		return domain.Move{}, fmt.Sprintf("Illegal %s.", op)
	}
	if op == "move" {
		return domain.Move{}, fmt.Sprintf("That move forms a mill. Specify capture: move %s %s cap <POS>. Options: %s",
			start, end, strings.Join(options, ", "))
	}
	return domain.Move{}, fmt.Sprintf("That drop forms a mill. Specify capture: drop %s cap <POS>. Options: %s",
		end, strings.Join(options, ", "))
}

func (s *Session) play(m domain.Move) string {
	s.board.Apply(m)
	if msg, over := s.checkOver(); over {
		return msg
	}
	if s.mode != ModeAI || s.board.Turn() != domain.Black {
		return "OK."
	}
	return s.aiReply()
}

// aiReply plays Black's move in ai mode.
func (s *Session) aiReply() string {
	d := s.ai.ComputerMove(s.board)
	if msg, over := s.checkOver(); over {
		if d.HasMove {
			return fmt.Sprintf("AI played: %s\n%s", d.Move, msg)
		}
		return msg
	}
	if !d.HasMove {
		return "AI has no move."
	}
	return fmt.Sprintf("AI played: %s", d.Move)
}

func (s *Session) checkOver() (string, bool) {
	winner, ok := s.board.GameOver()
	if !ok {
		return "", false
	}
	s.over = true
	return fmt.Sprintf("%s wins.", winner), true
}
