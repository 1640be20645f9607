package engine

import (
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func TestTimeManagerInitiateFixedMoveTime(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{MoveTime: 250 * time.Millisecond}
	tm.Initiate(limits, board.White, 20)

	if tm.targetDuration.Load() != 250 {
		t.Errorf("targetDuration = %d, want 250", tm.targetDuration.Load())
	}
	if tm.maxDuration.Load() != 250 {
		t.Errorf("maxDuration = %d, want 250", tm.maxDuration.Load())
	}
	if !tm.noManage.Load() {
		t.Error("noManage = false, want true under a fixed move time")
	}
}

func TestTimeManagerInitiateSingleLegalMoveCollapsesToZero(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{Time: [2]time.Duration{10 * time.Second, 10 * time.Second}}
	tm.Initiate(limits, board.White, 1)

	if got := tm.targetDuration.Load(); got != 0 {
		t.Errorf("targetDuration with a single legal move = %d, want 0", got)
	}
}

func TestTimeManagerInitiateNoLegalMovesCollapsesToZero(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{Time: [2]time.Duration{10 * time.Second, 10 * time.Second}}
	tm.Initiate(limits, board.White, 0)

	if got := tm.targetDuration.Load(); got != 0 {
		t.Errorf("targetDuration with no legal moves = %d, want 0", got)
	}
}

func TestTimeManagerInitiateSudderDeathBudget(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time: [2]time.Duration{60 * time.Second, 60 * time.Second},
		Inc:  [2]time.Duration{1 * time.Second, 1 * time.Second},
	}
	tm.Initiate(limits, board.White, 20)

	// expectedMoves = 64 + 1 = 65; base = inc + time/65 = 1000 + 923 = 1923ms
	want := uint32(1000 + 60000/65)
	if got := tm.targetDuration.Load(); got != want {
		t.Errorf("targetDuration = %d, want %d", got, want)
	}

	wantMax := uint32(60000 * 4 / 5)
	if got := tm.maxDuration.Load(); got != wantMax {
		t.Errorf("maxDuration = %d, want %d", got, wantMax)
	}
}

func TestTimeManagerInitiateMovesToGoNarrowsExpectedMoves(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time:      [2]time.Duration{60 * time.Second, 60 * time.Second},
		MovesToGo: 9,
	}
	tm.Initiate(limits, board.White, 20)

	// expectedMoves = 9 + 1 = 10; base = 0 + 60000/10 = 6000ms
	if got := tm.targetDuration.Load(); got != 6000 {
		t.Errorf("targetDuration = %d, want 6000", got)
	}
}

func TestTimeManagerInitiateInfiniteDisablesManagement(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{Infinite: true}
	tm.Initiate(limits, board.White, 20)

	if !tm.noManage.Load() {
		t.Error("noManage = false, want true under infinite search")
	}
	if !tm.infinite.Load() {
		t.Error("infinite = false, want true")
	}
}

func TestTimeManagerDeepenIgnoresHelperThreads(t *testing.T) {
	tm := NewTimeManager()
	tm.Initiate(UCILimits{Time: [2]time.Duration{60 * time.Second, 60 * time.Second}}, board.White, 20)
	before := tm.targetDuration.Load()

	tm.Deepen(1, 10, 500, 1000, 50, board.Move(1))

	if got := tm.targetDuration.Load(); got != before {
		t.Errorf("targetDuration changed from a non-main thread's Deepen call: %d != %d", got, before)
	}
}

func TestTimeManagerDeepenIgnoresShallowDepth(t *testing.T) {
	tm := NewTimeManager()
	tm.Initiate(UCILimits{Time: [2]time.Duration{60 * time.Second, 60 * time.Second}}, board.White, 20)
	before := tm.targetDuration.Load()

	tm.Deepen(0, 4, 500, 1000, 50, board.Move(1))

	if got := tm.targetDuration.Load(); got != before {
		t.Errorf("targetDuration changed at depth <= 4: %d != %d", got, before)
	}
}

func TestTimeManagerDeepenStableMoveShrinksTarget(t *testing.T) {
	tm := NewTimeManager()
	tm.Initiate(UCILimits{Time: [2]time.Duration{60 * time.Second, 60 * time.Second}}, board.White, 20)

	mv := board.Move(42)
	// Repeating the same best move across iterations should raise move
	// stability and push the target duration down.
	tm.Deepen(0, 5, 900, 1000, 10, mv)
	first := tm.targetDuration.Load()
	tm.Deepen(0, 6, 900, 1000, 10, mv)
	second := tm.targetDuration.Load()

	if second > first {
		t.Errorf("targetDuration grew across stable iterations: %d -> %d", first, second)
	}
}

func TestTimeManagerAbortSearchHonorsAbortNow(t *testing.T) {
	tm := NewTimeManager()
	tm.Initiate(UCILimits{Infinite: true}, board.White, 20)

	if tm.AbortSearch(0) {
		t.Fatal("AbortSearch = true before AbortNow was called")
	}
	tm.AbortNow()
	if !tm.AbortSearch(0) {
		t.Error("AbortSearch = false after AbortNow was called")
	}
}

func TestTimeManagerAbortSearchHonorsNodeLimit(t *testing.T) {
	tm := NewTimeManager()
	tm.Initiate(UCILimits{Infinite: true, Nodes: 1000}, board.White, 20)

	if tm.AbortSearch(999) {
		t.Error("AbortSearch = true below the node limit")
	}
	if !tm.AbortSearch(1000) {
		t.Error("AbortSearch = false at the node limit")
	}
}

func TestTimeManagerAbortDeepeningHonorsMaxDepth(t *testing.T) {
	tm := NewTimeManager()
	tm.Initiate(UCILimits{Infinite: true, Depth: 10}, board.White, 20)

	if tm.AbortDeepening(10, 0) {
		t.Error("AbortDeepening = true at the max depth itself")
	}
	if !tm.AbortDeepening(11, 0) {
		t.Error("AbortDeepening = false past the max depth")
	}
}

func TestTimeManagerClearDecaysExpectedMoves(t *testing.T) {
	tm := NewTimeManager()
	before := tm.expectedMoves.Load()
	tm.Clear()
	if got := tm.expectedMoves.Load(); got != before-1 {
		t.Errorf("expectedMoves after Clear = %d, want %d", got, before-1)
	}
	if tm.moveStability.Load() != 0 {
		t.Error("moveStability not reset by Clear")
	}
	if board.Move(tm.prevMove.Load()) != board.NoMove {
		t.Error("prevMove not reset by Clear")
	}
}
