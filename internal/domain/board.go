package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PiecesPerPlayer is the reserve each side starts with.
const PiecesPerPlayer = 9

// Player is the occupant of a point or the side to move.
type Player uint8

const (
	White Player = iota
	Black
	NoPlayer
)

// Opponent returns the other side. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoPlayer
	}
}

func (p Player) String() string {
	switch p {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "Empty"
	}
}

// Stage is the rule set that applies to a player.
type Stage uint8

const (
	StagePlacement Stage = iota
	StageSliding
	StageFlying
)

func (s Stage) String() string {
	switch s {
	case StagePlacement:
		return "placement"
	case StageSliding:
		return "sliding"
	case StageFlying:
		return "flying"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// Board is a full position. The zero value is not usable; call NewBoard.
// Boards copy by value so search clones never alias.
type Board struct {
	turn     Player
	cells    [PointCount]Player
	placed   [2]int
	unplaced [2]int
}

// NewBoard returns the empty starting position with first to move.
func NewBoard(first Player) *Board {
	b := &Board{turn: first}
	for i := range b.cells {
		b.cells[i] = NoPlayer
	}
	b.unplaced = [2]int{PiecesPerPlayer, PiecesPerPlayer}
	return b
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

func (b *Board) Turn() Player { return b.turn }

func (b *Board) At(p Point) Player { return b.cells[p] }

func (b *Board) Placed(p Player) int { return b.placed[p] }

func (b *Board) Unplaced(p Player) int { return b.unplaced[p] }

// Remaining counts pieces still in play, on the board or in reserve.
func (b *Board) Remaining(p Player) int { return b.placed[p] + b.unplaced[p] }

func (b *Board) lost(p Player) int {
	n := PiecesPerPlayer - b.Remaining(p)
	if n < 0 {
		return 0
	}
	return n
}

// Stage reports the rule set for the side to move.
func (b *Board) Stage() Stage { return b.StageOf(b.turn) }

// StageOf derives p's stage from its counters.
func (b *Board) StageOf(p Player) Stage {
	switch {
	case b.unplaced[p] > 0:
		return StagePlacement
	case b.placed[p] < 4:
		return StageFlying
	default:
		return StageSliding
	}
}

func (b *Board) isLine(p Point, axis int, owner Player, ignore Point) bool {
	pair := arena[p].lines[axis]
	if pair[0] == ignore || pair[1] == ignore {
		return false
	}
	return b.cells[pair[0]] == owner && b.cells[pair[1]] == owner
}

// IsMill reports whether owner holding p would sit in a mill on either axis.
// Occupancy of p itself is not checked.
func (b *Board) IsMill(p Point, owner Player) bool {
	return b.formsMill(p, owner, NoPoint)
}

// formsMill is IsMill with ignore treated as empty, so a slide's origin
// cannot complete the line it leaves.
func (b *Board) formsMill(p Point, owner Player, ignore Point) bool {
	return b.isLine(p, axisVertical, owner, ignore) || b.isLine(p, axisHorizontal, owner, ignore)
}

// CountMills counts distinct lines through points held by start whose two
// partners belong to owner. Each line is counted once per axis.
func (b *Board) CountMills(start, owner Player) int {
	var seen [2][PointCount]bool
	count := 0
	for i, occupant := range b.cells {
		if occupant != start {
			continue
		}
		p := Point(i)
		for _, axis := range [2]int{axisHorizontal, axisVertical} {
			if seen[axis][p] || !b.isLine(p, axis, owner, NoPoint) {
				continue
			}
			count++
			seen[axis][p] = true
			for _, q := range arena[p].lines[axis] {
				seen[axis][q] = true
			}
		}
	}
	return count
}

// captureTargets lists owner's pieces a mill may remove: those outside a
// mill, or every piece when all of them are protected.
func (b *Board) captureTargets(owner Player) []Point {
	var free, all []Point
	for i, occupant := range b.cells {
		if occupant != owner {
			continue
		}
		p := Point(i)
		all = append(all, p)
		if !b.IsMill(p, owner) {
			free = append(free, p)
		}
	}
	if len(free) == 0 {
		return all
	}
	return free
}

// Moves returns every legal move for the side to move, capture kinds first.
func (b *Board) Moves() []Move {
	moves, _ := b.MovesLimit(0)
	return moves
}

// MovesLimit is Moves capped at limit entries when limit > 0. The second
// result is how many candidates the cap discarded.
func (b *Board) MovesLimit(limit int) ([]Move, int) {
	me := b.turn
	if me == NoPlayer {
		return nil, 0
	}
	targets := b.captureTargets(me.Opponent())
	moves := make([]Move, 0, 32)

	switch b.StageOf(me) {
	case StagePlacement:
		for i, occupant := range b.cells {
			if occupant != NoPlayer {
				continue
			}
			to := Point(i)
			if !b.IsMill(to, me) {
				moves = append(moves, Drop(to))
				continue
			}
			for _, t := range targets {
				moves = append(moves, DropCapture(to, t))
			}
		}
	case StageSliding:
		for i, occupant := range b.cells {
			if occupant != me {
				continue
			}
			from := Point(i)
			for _, d := range Directions {
				to, ok := from.Neighbor(d)
				if ok && b.cells[to] == NoPlayer {
					moves = b.appendSlides(moves, from, to, targets)
				}
			}
		}
	case StageFlying:
		for i, occupant := range b.cells {
			if occupant != me {
				continue
			}
			for j, dest := range b.cells {
				if dest == NoPlayer {
					moves = b.appendSlides(moves, Point(i), Point(j), targets)
				}
			}
		}
	}

	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Rank() > moves[j].Rank()
	})
	if limit > 0 && len(moves) > limit {
		dropped := len(moves) - limit
		return moves[:limit], dropped
	}
	return moves, 0
}

func (b *Board) appendSlides(moves []Move, from, to Point, targets []Point) []Move {
	if !b.formsMill(to, b.turn, from) {
		return append(moves, Slide(from, to))
	}
	for _, t := range targets {
		moves = append(moves, SlideCapture(from, to, t))
	}
	return moves
}

// IsLegal reports whether m is in the current move list.
func (b *Board) IsLegal(m Move) bool {
	if m.IsZero() {
		return false
	}
	for _, candidate := range b.Moves() {
		if candidate == m {
			return true
		}
	}
	return false
}

// Apply plays m for the side to move and passes the turn. m must come from
// Moves; anything else corrupts the position.
func (b *Board) Apply(m Move) {
	switch m.Kind() {
	case KindDrop, KindDropCapture:
		b.cells[m.End()] = b.turn
		b.unplaced[b.turn]--
		b.placed[b.turn]++
	case KindMove, KindMoveCapture:
		b.cells[m.Start()] = NoPlayer
		b.cells[m.End()] = b.turn
	default:
		panic("domain: cannot apply empty move")
	}
	if m.HasCapture() {
		b.capture(m.Capture())
	}
	b.turn = b.turn.Opponent()
}

func (b *Board) capture(p Point) {
	victim := b.cells[p]
	b.cells[p] = NoPlayer
	if victim != NoPlayer {
		b.placed[victim]--
	}
}

// HasWon reports whether p has beaten its opponent: the opponent has no
// reserve left and either fewer than three pieces or no way to move.
func (b *Board) HasWon(p Player) bool {
	opp := p.Opponent()
	if opp == NoPlayer || b.unplaced[opp] > 0 {
		return false
	}
	if b.Remaining(opp) < 3 {
		return true
	}
	return b.blocked(opp)
}

// GameOver returns the winner, if either side has won.
func (b *Board) GameOver() (Player, bool) {
	for _, p := range [2]Player{White, Black} {
		if b.HasWon(p) {
			return p, true
		}
	}
	return NoPlayer, false
}

// blocked reports whether p cannot move. A flying player is only blocked
// when no empty point is left anywhere.
func (b *Board) blocked(p Player) bool {
	if b.StageOf(p) == StageFlying {
		for _, occupant := range b.cells {
			if occupant == NoPlayer {
				return false
			}
		}
		return true
	}
	for i, occupant := range b.cells {
		if occupant == p && b.hasEmptyNeighbor(Point(i)) {
			return false
		}
	}
	return true
}

func (b *Board) hasEmptyNeighbor(p Point) bool {
	for _, n := range arena[p].next {
		if n != NoPoint && b.cells[n] == NoPlayer {
			return true
		}
	}
	return false
}

// SameState compares counters and occupancy, ignoring the side to move.
func (b *Board) SameState(other *Board) bool {
	return b.placed == other.placed && b.unplaced == other.unplaced && b.cells == other.cells
}

// Validate checks the counter invariants.
func (b *Board) Validate() error {
	var counts [2]int
	for _, occupant := range b.cells {
		switch occupant {
		case White, Black:
			counts[occupant]++
		case NoPlayer:
		default:
			return fmt.Errorf("invalid occupant %d", occupant)
		}
	}
	for _, p := range [2]Player{White, Black} {
		if counts[p] != b.placed[p] {
			return fmt.Errorf("%v has %d pieces on the board but %d placed", p, counts[p], b.placed[p])
		}
		if b.unplaced[p] < 0 || b.Remaining(p) > PiecesPerPlayer {
			return fmt.Errorf("%v has impossible counts placed=%d unplaced=%d", p, b.placed[p], b.unplaced[p])
		}
	}
	if b.turn != White && b.turn != Black {
		return fmt.Errorf("invalid side to move %d", b.turn)
	}
	return nil
}

const boardTemplate = `1 X-----X-----X
  |     |     |
2 | X---X---X |
  | |   |   | |
3 | | X-X-X | |
  | | |   | | |
4 X-X-X   X-X-X
  | | |   | | |
5 | | X-X-X | |
  | |   |   | |
6 | X---X---X |
  |     |     |
7 X-----X-----X
  a b c d e f g`

// String draws the board with W, B and '.' for empty points.
func (b *Board) String() string {
	var sb strings.Builder
	next := 0
	for _, r := range boardTemplate {
		if r != 'X' {
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte(b.cells[next].symbol())
		next++
	}
	return sb.String()
}

func (p Player) symbol() byte {
	switch p {
	case White:
		return 'W'
	case Black:
		return 'B'
	default:
		return '.'
	}
}
