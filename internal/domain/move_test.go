package domain

import "testing"

func TestMoveStringAndParse(t *testing.T) {
	tests := []struct {
		move Move
		text string
	}{
		{Drop(D1), "drop D1"},
		{DropCapture(G1, B2), "drop G1 cap B2"},
		{Slide(A1, A4), "move A1 A4"},
		{SlideCapture(G4, G1, C3), "move G4 G1 cap C3"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := tt.move.String(); got != tt.text {
				t.Fatalf("String() = %q, want %q", got, tt.text)
			}
			parsed, err := ParseMove(tt.text)
			if err != nil {
				t.Fatalf("ParseMove returned error: %v", err)
			}
			if parsed != tt.move {
				t.Fatalf("ParseMove() = %v, want %v", parsed, tt.move)
			}
		})
	}
}

func TestParseMoveRejectsMalformed(t *testing.T) {
	for _, text := range []string{"", "drop", "drop A1 D1", "move A1", "drop A1 cap", "hop A1", "drop Z9"} {
		if _, err := ParseMove(text); err == nil {
			t.Fatalf("ParseMove(%q) expected error", text)
		}
	}
}

func TestMoveAccessorsPanicOnWrongKind(t *testing.T) {
	tests := []struct {
		name string
		call func()
	}{
		{"drop start", func() { Drop(A1).Start() }},
		{"move capture", func() { Slide(A1, D1).Capture() }},
		{"empty end", func() { Move{}.End() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.call()
		})
	}
}

func TestMoveRankPutsCapturesFirst(t *testing.T) {
	if !(SlideCapture(A1, D1, G7).Rank() > DropCapture(A1, G7).Rank()) {
		t.Fatal("move capture should outrank drop capture")
	}
	if !(DropCapture(A1, G7).Rank() > Slide(A1, D1).Rank()) {
		t.Fatal("drop capture should outrank move")
	}
	if !(Slide(A1, D1).Rank() > Drop(A1).Rank()) {
		t.Fatal("move should outrank drop")
	}
}
