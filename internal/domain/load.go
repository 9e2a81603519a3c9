package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBoardSize     = errors.New("board must have exactly 24 cells")
	ErrSameMarker    = errors.New("computer and human markers must differ")
	ErrTooManyPieces = errors.New("too many pieces for one side")
	ErrBadReserve    = errors.New("reserve count out of range")
)

// LoadBoard builds a position from external cells. Cells equal to computer
// become Black, cells equal to human become White, anything else is empty.
// Each side's reserve is whatever is left of its nine pieces. Black moves.
func LoadBoard(cells []int, computer, human int) (*Board, error) {
	b, err := loadCells(cells, computer, human)
	if err != nil {
		return nil, err
	}
	for _, p := range [2]Player{White, Black} {
		b.unplaced[p] = PiecesPerPlayer - b.placed[p]
	}
	return b, nil
}

// LoadBoardWithReserve is LoadBoard with explicit reserve counts, for
// resuming games in which pieces were already captured.
func LoadBoardWithReserve(cells []int, computer, human, computerUnplaced, humanUnplaced int) (*Board, error) {
	b, err := loadCells(cells, computer, human)
	if err != nil {
		return nil, err
	}
	b.unplaced[Black] = computerUnplaced
	b.unplaced[White] = humanUnplaced
	for _, p := range [2]Player{White, Black} {
		if b.unplaced[p] < 0 || b.Remaining(p) > PiecesPerPlayer {
			return nil, fmt.Errorf("%w: %v has %d placed and %d in reserve", ErrBadReserve, p, b.placed[p], b.unplaced[p])
		}
	}
	return b, nil
}

func loadCells(cells []int, computer, human int) (*Board, error) {
	if len(cells) != PointCount {
		return nil, fmt.Errorf("%w: got %d", ErrBoardSize, len(cells))
	}
	if computer == human {
		return nil, ErrSameMarker
	}

	b := NewBoard(Black)
	for i, v := range cells {
		switch v {
		case computer:
			b.cells[i] = Black
			b.placed[Black]++
		case human:
			b.cells[i] = White
			b.placed[White]++
		}
	}
	for _, p := range [2]Player{White, Black} {
		if b.placed[p] > PiecesPerPlayer {
			return nil, fmt.Errorf("%w: %v has %d", ErrTooManyPieces, p, b.placed[p])
		}
	}
	return b, nil
}

// Snapshot is the serialized form of a Board.
// Cells uses 'W', 'B' and '.' in point order.
type Snapshot struct {
	Turn     string `json:"turn"`
	Cells    string `json:"cells"`
	Placed   [2]int `json:"placed"`
	Unplaced [2]int `json:"unplaced"`
}

func (b *Board) Snapshot() Snapshot {
	cells := make([]byte, PointCount)
	for i, occupant := range b.cells {
		cells[i] = occupant.symbol()
	}
	return Snapshot{
		Turn:     strings.ToLower(b.turn.String()),
		Cells:    string(cells),
		Placed:   b.placed,
		Unplaced: b.unplaced,
	}
}

// FromSnapshot rebuilds a board and checks its invariants.
func FromSnapshot(s Snapshot) (*Board, error) {
	if len(s.Cells) != PointCount {
		return nil, fmt.Errorf("%w: got %d", ErrBoardSize, len(s.Cells))
	}
	b := &Board{placed: s.Placed, unplaced: s.Unplaced}
	switch strings.ToLower(s.Turn) {
	case "white":
		b.turn = White
	case "black":
		b.turn = Black
	default:
		return nil, fmt.Errorf("invalid turn %q", s.Turn)
	}
	for i := 0; i < PointCount; i++ {
		switch s.Cells[i] {
		case 'W', 'w':
			b.cells[i] = White
		case 'B', 'b':
			b.cells[i] = Black
		case '.':
			b.cells[i] = NoPlayer
		default:
			return nil, fmt.Errorf("invalid cell %q at %v", s.Cells[i], Point(i))
		}
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return b, nil
}
