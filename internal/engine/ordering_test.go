package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestHistoryGravitySaturates(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.Square(8), board.Square(16))

	for i := 0; i < 200; i++ {
		mo.UpdateHistory(board.White, m, 20)
	}

	score := int(mo.quietHistory[board.White][m.From()][m.To()])
	if score > MaxHistory {
		t.Errorf("quiet history = %d, must not exceed MaxHistory (%d)", score, MaxHistory)
	}
	if score < MaxHistory-50 {
		t.Errorf("quiet history = %d, expected convergence near MaxHistory (%d)", score, MaxHistory)
	}
}

func TestHistoryMalusPullsNegative(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.Square(1), board.Square(18))

	for i := 0; i < 200; i++ {
		mo.PenalizeHistory(board.Black, m, 20)
	}

	score := int(mo.quietHistory[board.Black][m.From()][m.To()])
	if score < -MaxHistory {
		t.Errorf("quiet history = %d, must not exceed -MaxHistory (%d)", score, -MaxHistory)
	}
	if score > -MaxHistory+50 {
		t.Errorf("quiet history = %d, expected convergence near -MaxHistory (%d)", score, -MaxHistory)
	}
}

func TestHistoryTablesAreStmIsolated(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.Square(4), board.Square(20))

	mo.UpdateHistory(board.White, m, 10)

	if got := int(mo.quietHistory[board.Black][m.From()][m.To()]); got != 0 {
		t.Errorf("Black quiet history = %d after a White-only update, want 0", got)
	}
}

func TestCaptureHistoryRoundTrip(t *testing.T) {
	mo := NewMoveOrderer()
	from, to := board.Square(12), board.Square(28)

	mo.UpdateCaptureHistory(board.White, board.NewMove(from, to), 6)
	if got := mo.GetCaptureHistoryScore(board.White, from, to); got <= 0 {
		t.Errorf("GetCaptureHistoryScore = %d, want positive after bonus", got)
	}

	mo.PenalizeCaptureHistory(board.White, board.NewMove(from, to), 6)
	mo.PenalizeCaptureHistory(board.White, board.NewMove(from, to), 6)
	if got := mo.GetCaptureHistoryScore(board.White, from, to); got >= 0 {
		t.Errorf("GetCaptureHistoryScore = %d, want negative after malus outweighing bonus", got)
	}
}

func TestClearResetsHistoryTables(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.Square(9), board.Square(25))

	mo.UpdateHistory(board.White, m, 10)
	mo.UpdateCaptureHistory(board.Black, m, 10)
	mo.Clear()

	if got := int(mo.quietHistory[board.White][m.From()][m.To()]); got != 0 {
		t.Errorf("quiet history = %d after Clear, want 0", got)
	}
	if got := mo.GetCaptureHistoryScore(board.Black, m.From(), m.To()); got != 0 {
		t.Errorf("capture history = %d after Clear, want 0", got)
	}
}
