package domain

import (
	"fmt"
	"strings"
)

// MoveKind tags the variant held by a Move.
type MoveKind uint8

const (
	// KindNone is the zero Move; it is never produced by move generation.
	KindNone MoveKind = iota
	KindDrop
	KindMove
	KindDropCapture
	KindMoveCapture
)

func (k MoveKind) String() string {
	switch k {
	case KindDrop:
		return "drop"
	case KindMove:
		return "move"
	case KindDropCapture:
		return "drop_capture"
	case KindMoveCapture:
		return "move_capture"
	default:
		return "none"
	}
}

// Move is one ply. Fields that do not apply to the kind hold NoPoint.
type Move struct {
	kind    MoveKind
	start   Point
	end     Point
	capture Point
}

func Drop(end Point) Move {
	return Move{kind: KindDrop, start: NoPoint, end: end, capture: NoPoint}
}

func Slide(start, end Point) Move {
	return Move{kind: KindMove, start: start, end: end, capture: NoPoint}
}

func DropCapture(end, capture Point) Move {
	return Move{kind: KindDropCapture, start: NoPoint, end: end, capture: capture}
}

func SlideCapture(start, end, capture Point) Move {
	return Move{kind: KindMoveCapture, start: start, end: end, capture: capture}
}

func (m Move) Kind() MoveKind { return m.kind }

// IsZero reports whether m is the empty Move.
func (m Move) IsZero() bool { return m.kind == KindNone }

// IsDrop reports whether the move places a piece from the reserve.
func (m Move) IsDrop() bool {
	return m.kind == KindDrop || m.kind == KindDropCapture
}

// HasCapture reports whether the move removes an opponent piece.
func (m Move) HasCapture() bool {
	return m.kind == KindDropCapture || m.kind == KindMoveCapture
}

// Start panics for drops.
func (m Move) Start() Point {
	if m.kind != KindMove && m.kind != KindMoveCapture {
		panic(fmt.Sprintf("domain: %v move has no start point", m.kind))
	}
	return m.start
}

// End panics for the zero Move.
func (m Move) End() Point {
	if m.kind == KindNone {
		panic("domain: empty move has no end point")
	}
	return m.end
}

// Capture panics for moves without a capture.
func (m Move) Capture() Point {
	if !m.HasCapture() {
		panic(fmt.Sprintf("domain: %v move has no capture point", m.kind))
	}
	return m.capture
}

// Rank orders moves for search; capture-bearing kinds rank highest.
func (m Move) Rank() int { return int(m.kind) }

func (m Move) String() string {
	var sb strings.Builder
	switch m.kind {
	case KindDrop, KindDropCapture:
		sb.WriteString("drop ")
		sb.WriteString(m.end.String())
	case KindMove, KindMoveCapture:
		sb.WriteString("move ")
		sb.WriteString(m.start.String())
		sb.WriteByte(' ')
		sb.WriteString(m.end.String())
	default:
		return "none"
	}
	if m.HasCapture() {
		sb.WriteString(" cap ")
		sb.WriteString(m.capture.String())
	}
	return sb.String()
}

// ParseMove reads the String form: "drop D1", "drop D1 cap A1",
// "move A1 D1" or "move A1 D1 cap G7".
func ParseMove(s string) (Move, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) < 2 {
		return Move{}, fmt.Errorf("malformed move %q", s)
	}

	var points []Point
	capture := NoPoint
	for i := 1; i < len(fields); i++ {
		if fields[i] == "cap" {
			if i+2 != len(fields) {
				return Move{}, fmt.Errorf("malformed capture in %q", s)
			}
			p, err := ParsePoint(fields[i+1])
			if err != nil {
				return Move{}, err
			}
			capture = p
			break
		}
		p, err := ParsePoint(fields[i])
		if err != nil {
			return Move{}, err
		}
		points = append(points, p)
	}

	switch {
	case fields[0] == "drop" && len(points) == 1:
		if capture != NoPoint {
			return DropCapture(points[0], capture), nil
		}
		return Drop(points[0]), nil
	case fields[0] == "move" && len(points) == 2:
		if capture != NoPoint {
			return SlideCapture(points[0], points[1], capture), nil
		}
		return Slide(points[0], points[1]), nil
	default:
		return Move{}, fmt.Errorf("malformed move %q", s)
	}
}
