package bot

import (
	"time"

	"morris/internal/domain"

	"github.com/rs/zerolog"
)

const (
	DefaultTimeLimit = 200 * time.Millisecond
	DefaultMaxDepth  = 3

	// firstDepth is where iterative deepening starts.
	firstDepth = 2
)

// Stats are per-search diagnostics. They do not affect the result.
type Stats struct {
	Nodes       int
	Leaves      int
	Prunes      int
	Truncated   int
	TimedOut    bool
	Depth       int
	Elapsed     time.Duration
	SkippedRoot int
}

// Controller runs an iterative-deepening negamax search with a wall-clock
// budget. It is not safe for concurrent use; give each game its own.
type Controller struct {
	timeLimit time.Duration
	maxDepth  int
	moveLimit int
	settings  domain.EvalSettings
	log       zerolog.Logger
	now       func() time.Time

	// produced holds the boards this controller left behind after its last
	// two moves, oldest first.
	produced [2]*domain.Board
	start    time.Time
	stats Stats
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeLimit sets the search budget. Zero or less means unlimited.
func WithTimeLimit(d time.Duration) Option {
	return func(c *Controller) { c.timeLimit = d }
}

// WithMaxDepth sets the deepest iteration. Values below 1 become 1.
func WithMaxDepth(depth int) Option {
	return func(c *Controller) {
		if depth < 1 {
			depth = 1
		}
		c.maxDepth = depth
	}
}

// WithMoveLimit caps the candidates examined per node; 0 disables the cap.
func WithMoveLimit(limit int) Option {
	return func(c *Controller) { c.moveLimit = limit }
}

func WithEvalSettings(s domain.EvalSettings) Option {
	return func(c *Controller) { c.settings = s }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController returns a controller with 200ms, depth 3 and default
// weights unless overridden.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		timeLimit: DefaultTimeLimit,
		maxDepth:  DefaultMaxDepth,
		settings:  domain.DefaultEvalSettings(),
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Settings() domain.EvalSettings { return c.settings }

func (c *Controller) SetTimeLimit(d time.Duration) { c.timeLimit = d }

func (c *Controller) SetMaxDepth(depth int) { WithMaxDepth(depth)(c) }

func (c *Controller) MaxDepth() int { return c.maxDepth }

func (c *Controller) TimeLimit() time.Duration { return c.timeLimit }

// Stats returns diagnostics from the most recent search.
func (c *Controller) Stats() Stats { return c.stats }

// Remember records b as the board this controller produced with its move.
// The root safeguard refuses to recreate the board produced two moves ago,
// which breaks A-B, X-Y, B-A, Y-X shuffles.
func (c *Controller) Remember(b *domain.Board) {
	c.produced[0] = c.produced[1]
	c.produced[1] = nil
	if b != nil {
		c.produced[1] = b.Clone()
	}
}

// Forget clears the move history, for example on a new game.
func (c *Controller) Forget() { c.produced = [2]*domain.Board{} }

func (c *Controller) expired() bool {
	if c.timeLimit <= 0 {
		return false
	}
	return c.now().Sub(c.start) > c.timeLimit
}

// BestMove searches b without modifying it. ok is false when no depth
// produced a move, either because the first depth ran out of time or
// because there was nothing to play.
func (c *Controller) BestMove(b *domain.Board) (GameNode, bool) {
	c.start = c.now()
	c.stats = Stats{}
	defer func() { c.stats.Elapsed = c.now().Sub(c.start) }()

	first := firstDepth
	if c.maxDepth < first {
		first = c.maxDepth
	}

	var best GameNode
	found := false
	for depth := first; depth <= c.maxDepth; depth++ {
		c.log.Debug().Int("plies", depth).Msg("deepening-iteratively")
		node, ok := c.search(b, depth, c.settings.WorstScore, c.settings.BestScore, true)
		if !ok {
			c.stats.TimedOut = true
			c.log.Debug().Int("plies", depth).Dur("budget", c.timeLimit).Msg("search-cutoff")
			break
		}
		if !node.HasMove {
			break
		}
		best, found = node, true
		c.stats.Depth = depth
		c.log.Debug().Int("plies", depth).Int("score", node.Score).Str("move", node.Move.String()).Msg("best-val")
	}
	return best, found
}

// search returns ok=false when the budget ran out anywhere below it, so a
// partly explored depth is never mistaken for a result.
func (c *Controller) search(b *domain.Board, depth, myBest, hisBest int, root bool) (GameNode, bool) {
	if depth == 0 {
		c.stats.Leaves++
		return GameNode{Score: b.Evaluate(c.settings)}, true
	}
	if c.expired() {
		return GameNode{}, false
	}
	c.stats.Nodes++

	moves, dropped := b.MovesLimit(c.moveLimit)
	c.stats.Truncated += dropped

	var avoid *domain.Board
	if root {
		avoid = c.produced[0]
	}

	best := GameNode{Score: myBest}
	for _, m := range moves {
		child := b.Clone()
		child.Apply(m)
		if avoid != nil && child.SameState(avoid) {
			c.stats.SkippedRoot++
			continue
		}

		reply, ok := c.search(child, depth-1, -hisBest, -best.Score, false)
		if !ok {
			return GameNode{}, false
		}
		if score := -reply.Score; score > best.Score {
			best = GameNode{Score: score, Move: m, HasMove: true}
		}
		if best.Score > hisBest {
			c.stats.Prunes++
			break
		}
	}
	return best, true
}

// Decide picks a move for the side to move without applying it.
func (c *Controller) Decide(b *domain.Board) Decision {
	node, ok := c.BestMove(b)
	if ok {
		return Decision{
			Move:    node.Move,
			HasMove: true,
			Score:   node.Score,
			Depth:   c.stats.Depth,
			Reason:  ReasonSearched,
		}
	}

	if _, over := b.GameOver(); over {
		return Decision{Reason: ReasonGameOver}
	}
	moves := b.Moves()
	if len(moves) == 0 {
		return Decision{Reason: ReasonNoMoves}
	}
	c.log.Warn().Bool("timed_out", c.stats.TimedOut).Str("move", moves[0].String()).Msg("search-fallback")
	return Decision{Move: moves[0], HasMove: true, Reason: ReasonFallback}
}

// ComputerMove decides and applies the move to the live board b.
func (c *Controller) ComputerMove(b *domain.Board) Decision {
	d := c.Decide(b)
	if !d.HasMove {
		return d
	}
	b.Apply(d.Move)
	c.Remember(b)
	c.log.Info().
		Str("move", d.Move.String()).
		Int("score", d.Score).
		Int("depth", d.Depth).
		Str("reason", string(d.Reason)).
		Int("nodes", c.stats.Nodes).
		Dur("elapsed", c.stats.Elapsed).
		Msg("computer-move")
	return d
}

// PassBoard loads an external position with Black as the computer and
// plays one computer move on it. The loaded board is returned along with
// the decision so callers can read back the new position.
func (c *Controller) PassBoard(cells []int, computer, human int) (*domain.Board, Decision, error) {
	b, err := domain.LoadBoard(cells, computer, human)
	if err != nil {
		return nil, Decision{}, err
	}
	c.Forget()
	return b, c.ComputerMove(b), nil
}

var _ Brain = (*Controller)(nil)
