package domain

import (
	"fmt"
	"strings"
)

// PointCount is the number of intersections on the board.
const PointCount = 24

// Point identifies one of the 24 board intersections.
// Values follow reading order: row 1 left to right, then row 2, and so on.
type Point int8

const (
	A1 Point = iota
	D1
	G1
	B2
	D2
	F2
	C3
	D3
	E3
	A4
	B4
	C4
	E4
	F4
	G4
	C5
	D5
	E5
	B6
	D6
	F6
	A7
	D7
	G7

	// NoPoint marks an absent neighbor or an unused move field.
	NoPoint Point = -1
)

var pointNames = [PointCount]string{
	"A1", "D1", "G1", "B2", "D2", "F2", "C3", "D3", "E3",
	"A4", "B4", "C4", "E4", "F4", "G4",
	"C5", "D5", "E5", "B6", "D6", "F6", "A7", "D7", "G7",
}

// Valid reports whether p names a real intersection.
func (p Point) Valid() bool {
	return p >= 0 && p < PointCount
}

func (p Point) String() string {
	if !p.Valid() {
		return "--"
	}
	return pointNames[p]
}

// ParsePoint accepts names like "a1" or "D7".
func ParsePoint(s string) (Point, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range pointNames {
		if n == name {
			return Point(i), nil
		}
	}
	return NoPoint, fmt.Errorf("unknown point %q", s)
}

// Direction is one of the four neighbor slots of a point.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the slots in the order move generation walks them.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// node is one arena record: neighbor indices plus the two partner pairs
// (vertical, horizontal) that complete a line through the point.
type node struct {
	next  [4]Point
	lines [2][2]Point
}

const (
	axisVertical = iota
	axisHorizontal
)

// u, d, l, r per point.
var adjacency = [PointCount][4]Point{
	A1: {NoPoint, A4, NoPoint, D1},
	D1: {NoPoint, D2, A1, G1},
	G1: {NoPoint, G4, D1, NoPoint},
	B2: {NoPoint, B4, NoPoint, D2},
	D2: {D1, D3, B2, F2},
	F2: {NoPoint, F4, D2, NoPoint},
	C3: {NoPoint, C4, NoPoint, D3},
	D3: {D2, NoPoint, C3, E3},
	E3: {NoPoint, E4, D3, NoPoint},
	A4: {A1, A7, NoPoint, B4},
	B4: {B2, B6, A4, C4},
	C4: {C3, C5, B4, NoPoint},
	E4: {E3, E5, NoPoint, F4},
	F4: {F2, F6, E4, G4},
	G4: {G1, G7, F4, NoPoint},
	C5: {C4, NoPoint, NoPoint, D5},
	D5: {NoPoint, D6, C5, E5},
	E5: {E4, NoPoint, D5, NoPoint},
	B6: {B4, NoPoint, NoPoint, D6},
	D6: {D5, D7, B6, F6},
	F6: {F4, NoPoint, D6, NoPoint},
	A7: {A4, NoPoint, NoPoint, D7},
	D7: {D6, NoPoint, A7, G7},
	G7: {G4, NoPoint, D7, NoPoint},
}

var arena = buildArena()

func buildArena() [PointCount]node {
	var nodes [PointCount]node
	for i := range nodes {
		nodes[i].next = adjacency[i]
	}
	for i := range nodes {
		p := Point(i)
		nodes[i].lines[axisVertical] = linePartners(p, Up, Down)
		nodes[i].lines[axisHorizontal] = linePartners(p, Left, Right)
	}
	return nodes
}

// linePartners finds the other two points on p's line along one axis.
// An end point uses the two points on its present side.
func linePartners(p Point, back, fwd Direction) [2]Point {
	b, f := adjacency[p][back], adjacency[p][fwd]
	switch {
	case b == NoPoint:
		return [2]Point{f, mustStep(f, fwd)}
	case f == NoPoint:
		return [2]Point{b, mustStep(b, back)}
	default:
		return [2]Point{b, f}
	}
}

func mustStep(p Point, d Direction) Point {
	if !p.Valid() || adjacency[p][d] == NoPoint {
		panic(fmt.Sprintf("domain: broken line through %v going %v", p, d))
	}
	return adjacency[p][d]
}

// Neighbor returns the adjacent point in direction d, if any.
func (p Point) Neighbor(d Direction) (Point, bool) {
	n := arena[p].next[d]
	return n, n != NoPoint
}

// MustNeighbor panics when p has no neighbor in direction d.
func (p Point) MustNeighbor(d Direction) Point {
	n, ok := p.Neighbor(d)
	if !ok {
		panic(fmt.Sprintf("domain: %v has no %v neighbor", p, d))
	}
	return n
}

// Degree is the number of neighbors of p.
func (p Point) Degree() int {
	n := 0
	for _, next := range arena[p].next {
		if next != NoPoint {
			n++
		}
	}
	return n
}
