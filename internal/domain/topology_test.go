package domain

import (
	"sort"
	"testing"
)

func opposite(d Direction) Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func TestAdjacencyIsSymmetric(t *testing.T) {
	edges := 0
	for i := 0; i < PointCount; i++ {
		p := Point(i)
		for _, d := range Directions {
			n, ok := p.Neighbor(d)
			if !ok {
				continue
			}
			edges++
			back, ok := n.Neighbor(opposite(d))
			if !ok || back != p {
				t.Fatalf("%v %v = %v, but %v %v = %v", p, d, n, n, opposite(d), back)
			}
		}
	}
	if edges != 64 {
		t.Fatalf("directed edges = %d, want 64", edges)
	}
}

func TestDegrees(t *testing.T) {
	tests := []struct {
		point Point
		want  int
	}{
		{A1, 2},
		{D1, 3},
		{D2, 4},
		{D3, 3},
		{B4, 4},
		{C5, 2},
		{G7, 2},
	}
	for _, tt := range tests {
		t.Run(tt.point.String(), func(t *testing.T) {
			if got := tt.point.Degree(); got != tt.want {
				t.Fatalf("Degree() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSixteenDistinctLines(t *testing.T) {
	lines := make(map[[3]Point]bool)
	for i := 0; i < PointCount; i++ {
		for axis := range arena[i].lines {
			pair := arena[i].lines[axis]
			line := []Point{Point(i), pair[0], pair[1]}
			sort.Slice(line, func(a, b int) bool { return line[a] < line[b] })
			lines[[3]Point{line[0], line[1], line[2]}] = true
		}
	}
	if len(lines) != 16 {
		t.Fatalf("distinct lines = %d, want 16", len(lines))
	}
}

func TestLinePartnersAtLineEnds(t *testing.T) {
	tests := []struct {
		point Point
		axis  int
		want  [2]Point
	}{
		{D3, axisVertical, [2]Point{D2, D1}},
		{D5, axisVertical, [2]Point{D6, D7}},
		{C4, axisHorizontal, [2]Point{B4, A4}},
		{E4, axisHorizontal, [2]Point{F4, G4}},
		{D2, axisHorizontal, [2]Point{B2, F2}},
		{A4, axisVertical, [2]Point{A1, A7}},
	}
	for _, tt := range tests {
		t.Run(tt.point.String(), func(t *testing.T) {
			if got := arena[tt.point].lines[tt.axis]; got != tt.want {
				t.Fatalf("lines = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustNeighborPanicsAtEdge(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing neighbor")
		}
	}()
	A1.MustNeighbor(Up)
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint(" e5 ")
	if err != nil {
		t.Fatalf("ParsePoint returned error: %v", err)
	}
	if p != E5 {
		t.Fatalf("ParsePoint() = %v, want E5", p)
	}
	if _, err := ParsePoint("D4"); err == nil {
		t.Fatal("expected error for the board centre")
	}
}
