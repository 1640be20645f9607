package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestSEEWinningPawnTakesQueen(t *testing.T) {
	// White pawn on e4 can capture a hanging black queen on d5, undefended.
	pos, err := board.ParseFEN("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	m, err := board.ParseMove("e4d5", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	if got := SEE(pos, m); got <= 0 {
		t.Errorf("SEE(pawn takes undefended queen) = %d, want positive", got)
	}
	if !CompareSEE(pos, m, 0) {
		t.Errorf("CompareSEE(pawn takes undefended queen, 0) = false, want true")
	}
}

func TestSEELosingQueenTakesDefendedPawn(t *testing.T) {
	// White queen captures a pawn on d5 that is defended by a black knight,
	// losing the queen for a pawn overall.
	pos, err := board.ParseFEN("4k3/8/1n6/3p4/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	m, err := board.ParseMove("d1d5", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	if got := SEE(pos, m); got >= 0 {
		t.Errorf("SEE(queen takes defended pawn) = %d, want negative", got)
	}
	if CompareSEE(pos, m, 0) {
		t.Errorf("CompareSEE(queen takes defended pawn, 0) = true, want false")
	}
}

func TestCompareSEEMatchesExactValue(t *testing.T) {
	positions := []struct {
		fen  string
		move string
	}{
		{"4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", "e4d5"},
		{"4k3/8/2n5/3p4/8/8/8/3QK3 w - - 0 1", "d1d5"},
		{"4k3/8/3r4/3p4/3R4/8/8/4K3 w - - 0 1", "d4d5"},
	}

	for _, tc := range positions {
		pos, err := board.ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%s): %v", tc.fen, err)
		}
		m, err := board.ParseMove(tc.move, pos)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", tc.move, err)
		}

		exact := SEE(pos, m)
		for _, threshold := range []int{-200, -1, 0, 1, 200} {
			want := exact >= threshold
			got := CompareSEE(pos, m, threshold)
			if got != want {
				t.Errorf("fen=%q move=%s threshold=%d: CompareSEE=%v, want %v (exact SEE=%d)",
					tc.fen, tc.move, threshold, got, want, exact)
			}
		}
	}
}
