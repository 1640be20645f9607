package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestTranspositionTableRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)

	hash := uint64(0x1122334455667788)
	move := board.NewMove(board.Square(12), board.Square(28))

	tt.Store(hash, 6, 120, TTExact, move, true)

	entry, found := tt.Probe(hash)
	if !found {
		t.Fatalf("expected entry to be found")
	}
	if entry.Depth != 6 {
		t.Errorf("Depth = %d, want 6", entry.Depth)
	}
	if entry.Score != 120 {
		t.Errorf("Score = %d, want 120", entry.Score)
	}
	if entry.Flag != TTExact {
		t.Errorf("Flag = %v, want TTExact", entry.Flag)
	}
	if entry.BestMove != move {
		t.Errorf("BestMove = %v, want %v", entry.BestMove, move)
	}
	if !entry.IsPV {
		t.Errorf("IsPV = false, want true")
	}
}

func TestTranspositionTableNegativeScore(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0xdeadbeefcafef00d)

	tt.Store(hash, 3, -450, TTUpperBound, board.NoMove, false)

	entry, found := tt.Probe(hash)
	if !found {
		t.Fatalf("expected entry to be found")
	}
	if entry.Score != -450 {
		t.Errorf("Score = %d, want -450", entry.Score)
	}
}

func TestTranspositionTableMiss(t *testing.T) {
	tt := NewTranspositionTable(1)

	if _, found := tt.Probe(0x123456789); found {
		t.Errorf("expected miss on empty table")
	}

	tt.Store(0xaaaa, 4, 10, TTExact, board.NoMove, false)
	if _, found := tt.Probe(0x1aaaa); found {
		t.Errorf("expected miss for a different hash landing on the same slot mask")
	}
}

// TestTranspositionTableReplacementPrefersDeeper verifies that a shallower
// same-age store does not clobber a deeper entry already at the slot.
func TestTranspositionTableReplacementPrefersDeeper(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0x42)

	tt.Store(hash, 10, 50, TTUpperBound, board.NoMove, false)
	tt.Store(hash, 2, -999, TTUpperBound, board.NoMove, false)

	entry, found := tt.Probe(hash)
	if !found {
		t.Fatalf("expected entry to be found")
	}
	if entry.Depth != 10 {
		t.Errorf("Depth = %d, want 10 (shallower store should not have replaced it)", entry.Depth)
	}
}

// TestTranspositionTableReplacementNewSearchWins verifies that aging the
// table lets a shallower entry from the new search replace an old one.
func TestTranspositionTableReplacementNewSearchWins(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0x99)

	tt.Store(hash, 10, 50, TTUpperBound, board.NoMove, false)
	tt.NewSearch()
	tt.NewSearch()
	tt.Store(hash, 4, 77, TTExact, board.NoMove, false)

	entry, found := tt.Probe(hash)
	if !found {
		t.Fatalf("expected entry to be found")
	}
	if entry.Depth != 4 {
		t.Errorf("Depth = %d, want 4 (new-search entry should win via age bonus)", entry.Depth)
	}
}

func TestAdjustScoreTTRoundTrip(t *testing.T) {
	mateScore := MateScore - 3
	stored := AdjustScoreToTT(mateScore, 5)
	restored := AdjustScoreFromTT(stored, 5)
	if restored != mateScore {
		t.Errorf("mate score round-trip = %d, want %d", restored, mateScore)
	}

	plainScore := 134
	if got := AdjustScoreFromTT(AdjustScoreToTT(plainScore, 7), 7); got != plainScore {
		t.Errorf("plain score round-trip = %d, want %d", got, plainScore)
	}
}

func TestTranspositionTableClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(0x55, 5, 10, TTExact, board.NoMove, false)

	tt.Clear()

	if _, found := tt.Probe(0x55); found {
		t.Errorf("expected table to be empty after Clear")
	}
	if tt.HitRate() != 0 {
		t.Errorf("HitRate() after Clear = %v, want 0", tt.HitRate())
	}
}
