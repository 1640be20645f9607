package engine

import (
	"sync/atomic"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// expectedMovesDefault seeds TimeManager's estimate of how many moves remain
// in the game; Clear decays it by one after every completed search, so a
// TimeManager reused across a long game divides the remaining clock over
// fewer expected moves each time when no movestogo is given.
const expectedMovesDefault = 64

// UCILimits contains UCI time control parameters.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
	Depth     int              // maximum search depth
	Nodes     uint64           // maximum nodes to search
	Infinite  bool             // search until stopped
	Ponder    bool             // ponder mode
}

// TimeManager implements adaptive time allocation: Initiate sizes a base
// budget from the clock at the start of a search, then every completed
// iteration Deepen narrows or widens the live target duration based on how
// stable the best move has been, how much of the search's effort went into
// confirming it, and how much the evaluation swung since the previous
// iteration. AbortDeepening gates starting another iteration; AbortSearch is
// the hard backstop. Both are polled between iterations, not per node.
//
// Every tracked field is atomic: Deepen is called from whichever worker
// goroutine just finished an iteration, while AbortSearch/AbortDeepening are
// polled concurrently from the workers and the result-collection loop.
type TimeManager struct {
	startTime time.Time

	expectedMoves atomic.Uint32

	maxDuration    atomic.Uint32 // milliseconds
	baseDuration   atomic.Uint32
	targetDuration atomic.Uint32

	moveStability atomic.Uint32
	prevEval      atomic.Int32
	prevMove      atomic.Uint32 // board.Move; NoMove sentinel means "none yet"

	infinite atomic.Bool
	abortNow atomic.Bool
	noManage atomic.Bool

	maxDepth atomic.Uint32
	maxNodes atomic.Uint64
}

// NewTimeManager creates a time manager with no search in progress; call
// Initiate before using it.
func NewTimeManager() *TimeManager {
	tm := &TimeManager{}
	tm.expectedMoves.Store(expectedMovesDefault)
	tm.prevMove.Store(uint32(board.NoMove))
	tm.infinite.Store(true)
	tm.noManage.Store(true)
	tm.maxDepth.Store(uint32(MaxPly))
	tm.maxNodes.Store(^uint64(0))
	return tm
}

// Initiate sizes the search budget from the clock state at the root.
// legalMoveCount is the number of legal moves in the root position: with
// none or exactly one, there's nothing to deliberate over, so the target
// duration collapses to zero.
func (tm *TimeManager) Initiate(limits UCILimits, us board.Color, legalMoveCount int) {
	tm.startTime = time.Now()
	tm.abortNow.Store(false)

	infinite := limits.Infinite
	if limits.Time[board.White] == 0 && limits.Time[board.Black] == 0 && limits.MoveTime == 0 {
		infinite = true
	}

	maxDepth := uint32(MaxPly)
	if limits.Depth > 0 {
		maxDepth = uint32(limits.Depth)
	}
	maxNodes := ^uint64(0)
	if limits.Nodes > 0 {
		maxNodes = limits.Nodes
	}
	tm.infinite.Store(infinite)
	tm.maxDepth.Store(maxDepth)
	tm.maxNodes.Store(maxNodes)

	noManage := infinite || limits.MoveTime != 0
	tm.noManage.Store(noManage)

	if limits.MoveTime != 0 {
		moveTimeMs := uint32(limits.MoveTime.Milliseconds())
		tm.targetDuration.Store(moveTimeMs)
		tm.maxDuration.Store(moveTimeMs)
		return
	}

	if legalMoveCount == 0 {
		tm.targetDuration.Store(0)
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	maxTime := uint32(timeLeft.Milliseconds()) * 4 / 5
	expectedMoves := tm.expectedMoves.Load() + 1
	if limits.MovesToGo > 0 {
		expectedMoves = uint32(limits.MovesToGo) + 1
	}

	var base uint32
	if legalMoveCount > 1 {
		base = uint32(inc.Milliseconds()) + uint32(timeLeft.Milliseconds())/expectedMoves
		if base > maxTime {
			base = maxTime
		}
	}

	tm.baseDuration.Store(base)
	tm.targetDuration.Store(base)
	tm.maxDuration.Store(maxTime)
}

// Deepen folds the result of a completed iteration into the live target
// duration. thread identifies the worker that finished the iteration; only
// the main worker (thread 0) drives the adjustment, since the rest are
// Lazy-SMP helpers exploring the same root from different starting depths.
// moveNodes is the cumulative node count that worker has spent under mv at
// the root so far; nodes is that worker's total node count for the search.
func (tm *TimeManager) Deepen(thread, depth int, moveNodes, nodes uint64, eval int, mv board.Move) {
	prevEval := tm.prevEval.Swap(int32(eval))

	if thread != 0 || depth <= 4 || tm.noManage.Load() {
		return
	}

	prevMove := board.Move(tm.prevMove.Load())
	var stability uint32
	if mv == prevMove {
		stability = tm.moveStability.Load() + 1
		if stability > 14 {
			stability = 14
		}
	}
	tm.prevMove.Store(uint32(mv))
	tm.moveStability.Store(stability)

	moveStabilityFactor := float64(41-stability) * 0.024

	nodeFactor := 0.52
	if nodes > 0 {
		nodeFactor = (1.0-float64(moveNodes)/float64(nodes))*3.42 + 0.52
	}

	evalSwing := prevEval - int32(eval)
	if evalSwing < 18 {
		evalSwing = 18
	}
	if evalSwing > 20 {
		evalSwing = 20
	}
	evalFactor := float64(evalSwing) * 0.088

	base := float64(tm.baseDuration.Load())
	target := base * moveStabilityFactor * nodeFactor * evalFactor
	if target < 0 {
		target = 0
	}
	tm.targetDuration.Store(uint32(target))
}

// AbortNow requests an immediate stop, bypassing both duration checks; used
// for a UCI "stop" command.
func (tm *TimeManager) AbortNow() {
	tm.abortNow.Store(true)
}

// Elapsed returns the time elapsed since Initiate was called.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// AbortSearch is the hard cutoff, polled after each completed iteration and
// from the engine's result-collection loop: once
// tripped, continuing to search cannot be justified regardless of how the
// current iteration is going.
func (tm *TimeManager) AbortSearch(nodes uint64) bool {
	if tm.abortNow.Load() {
		return true
	}
	elapsedMs := uint32(tm.Elapsed().Milliseconds())
	if tm.maxDuration.Load() < elapsedMs && !tm.infinite.Load() {
		return true
	}
	return tm.maxNodes.Load() <= nodes
}

// AbortDeepening is the soft cutoff consulted between iterations: once the
// live target duration, max depth, or node limit is exceeded, starting
// another iteration isn't worth it even though the hard cutoff hasn't
// fired yet.
func (tm *TimeManager) AbortDeepening(depth int, nodes uint64) bool {
	if tm.abortNow.Load() {
		return true
	}
	elapsedMs := uint32(tm.Elapsed().Milliseconds())
	if tm.targetDuration.Load() < elapsedMs && !tm.infinite.Load() {
		return true
	}
	if uint32(depth) > tm.maxDepth.Load() {
		return true
	}
	return tm.maxNodes.Load() <= nodes
}

// Clear resets the per-search stability tracking between searches and
// decays the expected-move count by one.
func (tm *TimeManager) Clear() {
	tm.prevMove.Store(uint32(board.NoMove))
	tm.abortNow.Store(false)
	tm.noManage.Store(false)
	tm.moveStability.Store(0)

	expected := tm.expectedMoves.Load()
	if expected > 0 {
		tm.expectedMoves.Store(expected - 1)
	}
}
