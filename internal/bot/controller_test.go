package bot

import (
	"strings"
	"testing"
	"time"

	"morris/internal/domain"
)

func boardFixture(t *testing.T, turn, cells string, whiteUnplaced, blackUnplaced int) *domain.Board {
	t.Helper()
	b, err := domain.FromSnapshot(domain.Snapshot{
		Turn:     turn,
		Cells:    cells,
		Placed:   [2]int{strings.Count(cells, "W"), strings.Count(cells, "B")},
		Unplaced: [2]int{whiteUnplaced, blackUnplaced},
	})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return b
}

// frozenUntil returns a clock that stands still for n calls and then jumps
// an hour ahead.
func frozenUntil(n int) func() time.Time {
	base := time.Unix(1700000000, 0)
	calls := 0
	return func() time.Time {
		calls++
		if calls > n {
			return base.Add(time.Hour)
		}
		return base
	}
}

// ticking returns a clock that advances step on every call.
func ticking(step time.Duration) func() time.Time {
	now := time.Unix(1700000000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	b := domain.NewBoard(White)
	b.Apply(domain.Drop(domain.D2))
	b.Apply(domain.Drop(domain.B4))

	first := NewController(WithTimeLimit(0), WithMaxDepth(3)).Decide(b)
	second := NewController(WithTimeLimit(0), WithMaxDepth(3)).Decide(b)

	if !first.HasMove || first.Reason != ReasonSearched {
		t.Fatalf("first decision = %+v, want a searched move", first)
	}
	if first.Move != second.Move || first.Score != second.Score {
		t.Fatalf("decisions differ: %v (%d) vs %v (%d)", first.Move, first.Score, second.Move, second.Score)
	}
	if first.Depth != 3 {
		t.Fatalf("Depth = %d, want 3", first.Depth)
	}
}

func TestDecideDoesNotMutateBoard(t *testing.T) {
	b := domain.NewBoard(White)
	before := b.Clone()
	NewController(WithTimeLimit(0), WithMaxDepth(2)).Decide(b)
	if !b.SameState(before) || b.Turn() != before.Turn() {
		t.Fatal("Decide modified the board")
	}
}

func TestSearchTakesAvailableMill(t *testing.T) {
	// White A1 D1 can close the top row on G1.
	b := boardFixture(t, "white", "WW.B...B................", 7, 7)
	d := NewController(WithTimeLimit(0), WithMaxDepth(2)).Decide(b)

	if !d.HasMove || !d.Move.HasCapture() || d.Move.End() != domain.G1 {
		t.Fatalf("Decide() = %v, want a capturing drop on G1", d.Move)
	}
}

func TestZeroBudgetFallsBackToFirstLegalMove(t *testing.T) {
	b := domain.NewBoard(White)
	want := b.Moves()[0]

	c := NewController(WithTimeLimit(time.Nanosecond), WithMaxDepth(4), WithClock(ticking(time.Millisecond)))
	d := c.ComputerMove(b)

	if d.Reason != ReasonFallback || !d.HasMove {
		t.Fatalf("ComputerMove() = %+v, want fallback move", d)
	}
	if d.Move != want {
		t.Fatalf("Move = %v, want %v", d.Move, want)
	}
	if !c.Stats().TimedOut {
		t.Fatal("expected TimedOut in stats")
	}
	if b.Turn() != Black || b.At(want.End()) != White {
		t.Fatal("fallback move was not applied to the live board")
	}
}

func TestCutoffKeepsLastCompletedDepth(t *testing.T) {
	// Depth 2 from the opening needs 26 clock reads including the start;
	// the clock expires early in depth 3.
	c := NewController(WithTimeLimit(time.Second), WithMaxDepth(4), WithClock(frozenUntil(30)))
	d := c.Decide(domain.NewBoard(White))

	if d.Reason != ReasonSearched || !d.HasMove {
		t.Fatalf("Decide() = %+v, want searched move", d)
	}
	if d.Depth != 2 {
		t.Fatalf("Depth = %d, want 2", d.Depth)
	}
	if !c.Stats().TimedOut {
		t.Fatal("expected TimedOut in stats")
	}
}

func TestDecideReportsGameOver(t *testing.T) {
	// Black is down to two pieces.
	b := boardFixture(t, "black", "WWW.W.B..............B..", 0, 0)
	d := NewController(WithTimeLimit(0)).Decide(b)

	if d.HasMove || d.Reason != ReasonGameOver {
		t.Fatalf("Decide() = %+v, want game over", d)
	}
}

func TestMaxDepthBelowTwo(t *testing.T) {
	d := NewController(WithTimeLimit(0), WithMaxDepth(0)).Decide(domain.NewBoard(White))
	if !d.HasMove || d.Depth != 1 {
		t.Fatalf("Decide() = %+v, want depth 1 move", d)
	}
}

func TestMoveLimitIsReported(t *testing.T) {
	b := boardFixture(t, "white", "W...B.W...B..B...B.....W", 0, 0)
	c := NewController(WithTimeLimit(0), WithMaxDepth(2), WithMoveLimit(50))
	c.Decide(b)
	if c.Stats().Truncated == 0 {
		t.Fatal("expected truncated candidates to be counted")
	}
}

func TestRootSafeguardSkipsBoardFromTwoMovesAgo(t *testing.T) {
	b := domain.NewBoard(White)
	c := NewController(WithTimeLimit(0), WithMaxDepth(2))

	first := c.Decide(b)
	repeat := b.Clone()
	repeat.Apply(first.Move)

	c.Remember(repeat)
	if d := c.Decide(b); d.Move != first.Move || c.Stats().SkippedRoot != 0 {
		t.Fatalf("last produced board must stay playable, got %v with %d skips", d.Move, c.Stats().SkippedRoot)
	}

	c.Remember(b)
	second := c.Decide(b)
	if second.Move == first.Move {
		t.Fatalf("board from two moves ago was recreated with %v", first.Move)
	}
	if c.Stats().SkippedRoot != 1 {
		t.Fatalf("SkippedRoot = %d, want 1", c.Stats().SkippedRoot)
	}

	c.Forget()
	if d := c.Decide(b); d.Move != first.Move {
		t.Fatalf("Decide() after Forget = %v, want %v", d.Move, first.Move)
	}
}

func TestSelfPlayBreaksShuffles(t *testing.T) {
	b := boardFixture(t, "white", "WW....B.B.W..W.B.B......", 0, 0)
	players := map[domain.Player]*Controller{
		White: NewController(WithTimeLimit(0)),
		Black: NewController(WithTimeLimit(0)),
	}
	produced := map[domain.Player][]*domain.Board{}

	skips := 0
	for ply := 0; ply < 60; ply++ {
		if _, over := b.GameOver(); over {
			break
		}
		mover := b.Turn()
		c := players[mover]
		d := c.ComputerMove(b)
		if !d.HasMove {
			break
		}
		skips += c.Stats().SkippedRoot

		history := produced[mover]
		if n := len(history); d.Reason == ReasonSearched && n >= 2 && b.SameState(history[n-2]) {
			t.Fatalf("ply %d: %v recreated its board from two moves ago with %v", ply, mover, d.Move)
		}
		produced[mover] = append(history, b.Clone())
	}
	if skips == 0 {
		t.Fatal("root safeguard never skipped a repeated board")
	}
}

func TestPassBoard(t *testing.T) {
	c := NewController(WithTimeLimit(0), WithMaxDepth(2))
	if _, _, err := c.PassBoard(make([]int, 10), 1, 2); err == nil {
		t.Fatal("expected error for short board")
	}

	cells := make([]int, domain.PointCount)
	cells[domain.A1] = 2
	cells[domain.D1] = 2
	b, d, err := c.PassBoard(cells, 1, 2)
	if err != nil {
		t.Fatalf("PassBoard returned error: %v", err)
	}
	// Black (the computer) must block the top row.
	if !d.HasMove || d.Move != domain.Drop(domain.G1) {
		t.Fatalf("PassBoard() move = %v, want drop G1", d.Move)
	}
	if b.Turn() != White || b.At(domain.G1) != Black {
		t.Fatal("move was not applied to the loaded board")
	}
}

const (
	White = domain.White
	Black = domain.Black
)
