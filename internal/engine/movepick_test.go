package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestOrderedMoveGenReturnsTTMoveFirst(t *testing.T) {
	pos, err := board.ParseFEN("r1bqkbnr/pppppppp/2n5/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	ttMove, err := board.ParseMove("g8f6", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	mo := NewMoveOrderer()
	g := NewOrderedMoveGen(pos, mo, 0, ttMove, board.NoMove)

	if got := g.Next(pos, mo, board.NoMove); got != ttMove {
		t.Fatalf("first move = %v, want TT move %v", got, ttMove)
	}

	// The TT move must not be yielded a second time later in the sequence.
	for {
		m := g.Next(pos, mo, board.NoMove)
		if m == board.NoMove {
			break
		}
		if m == ttMove {
			t.Fatalf("TT move %v yielded a second time", ttMove)
		}
	}
}

func TestOrderedMoveGenGoodCaptureBeforeQuiet(t *testing.T) {
	// White to move: pawn on e4 can take an undefended knight on d5; the
	// rest of White's moves are quiet.
	pos, err := board.ParseFEN("4k3/8/8/3n4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	capture, err := board.ParseMove("e4d5", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	mo := NewMoveOrderer()
	g := NewOrderedMoveGen(pos, mo, 0, board.NoMove, board.NoMove)

	if got := g.Next(pos, mo, board.NoMove); got != capture {
		t.Fatalf("first move = %v, want winning capture %v", got, capture)
	}
}

func TestOrderedMoveGenKillerBeforeQuietHistory(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	killer, err := board.ParseMove("e1d1", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	other, err := board.ParseMove("e2e3", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	mo := NewMoveOrderer()
	mo.UpdateKillers(killer, 0)
	// Give `other` a strong quiet-history score, so without the killer
	// cutting the line it would be drawn first.
	mo.UpdateHistory(board.White, other, 20)

	g := NewOrderedMoveGen(pos, mo, 0, board.NoMove, board.NoMove)
	if got := g.Next(pos, mo, board.NoMove); got != killer {
		t.Fatalf("first move = %v, want killer move %v", got, killer)
	}
}

func TestOrderedMoveGenYieldsEveryLegalMoveExactlyOnce(t *testing.T) {
	pos, err := board.ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	want := make(map[board.Move]bool, legal.Len())
	for i := 0; i < legal.Len(); i++ {
		want[legal.Get(i)] = true
	}

	mo := NewMoveOrderer()
	g := NewOrderedMoveGen(pos, mo, 0, board.NoMove, board.NoMove)

	seen := make(map[board.Move]bool, legal.Len())
	for {
		m := g.Next(pos, mo, board.NoMove)
		if m == board.NoMove {
			break
		}
		if seen[m] {
			t.Fatalf("move %v yielded twice", m)
		}
		seen[m] = true
	}

	if len(seen) != len(want) {
		t.Fatalf("yielded %d moves, want %d", len(seen), len(want))
	}
	for m := range want {
		if !seen[m] {
			t.Errorf("legal move %v was never yielded", m)
		}
	}
}

func TestOrderedMoveGenSkipQuietsStopsAtBadCaptures(t *testing.T) {
	// Only quiet moves available: with skip-quiets set, Next must return
	// nothing at all.
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	mo := NewMoveOrderer()
	g := NewOrderedMoveGen(pos, mo, 0, board.NoMove, board.NoMove)
	g.SetSkipQuiets(true)

	if got := g.Next(pos, mo, board.NoMove); got != board.NoMove {
		t.Fatalf("Next() with skip-quiets and no captures = %v, want NoMove", got)
	}
}

func TestQSearchMoveGenSkipsLosingCapture(t *testing.T) {
	// White queen can take a pawn on d5 defended by a knight: a losing
	// capture that quiescence search must never be offered.
	pos, err := board.ParseFEN("4k3/8/1n6/3p4/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	losing, err := board.ParseMove("d1d5", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	mo := NewMoveOrderer()
	g := NewQSearchMoveGen()

	for {
		m, _, ok := g.Next(pos, mo)
		if !ok {
			break
		}
		if m == losing {
			t.Fatalf("QSearchMoveGen yielded losing capture %v", losing)
		}
	}
}

func TestQSearchMoveGenReturnsWinningCaptureWithSEEValue(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	winning, err := board.ParseMove("e4d5", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	mo := NewMoveOrderer()
	g := NewQSearchMoveGen()

	m, seeValue, ok := g.Next(pos, mo)
	if !ok || m != winning {
		t.Fatalf("Next() = (%v, %v), want (%v, true)", m, ok, winning)
	}
	if seeValue <= 0 {
		t.Errorf("seeValue = %d, want positive for a winning capture", seeValue)
	}
}
