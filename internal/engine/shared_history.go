package engine

import "sync/atomic"

// SharedHistory is a from/to quiet-move history table shared across all
// Lazy-SMP workers. Each worker keeps its own per-thread history in
// MoveOrderer; SharedHistory additionally accumulates bonuses from every
// worker's cutoffs so that the collective search population sharpens move
// ordering faster than any single thread could alone. Updates use atomics
// instead of a mutex since workers only ever add small bonuses/maluses and
// occasional lost updates under contention are harmless.
type SharedHistory struct {
	scores [64][64]atomic.Int32
}

// NewSharedHistory creates an empty shared history table.
func NewSharedHistory() *SharedHistory {
	return &SharedHistory{}
}

// Get returns the accumulated shared history score for a from/to pair.
func (sh *SharedHistory) Get(from, to int) int {
	return int(sh.scores[from][to].Load())
}

// Update adds bonus (or, if negative, a malus) to the from/to pair, clamping
// to the same MaxHistory magnitude MoveOrderer's gravity-updated tables
// saturate at so the two combine cleanly in statScore.
func (sh *SharedHistory) Update(from, to, bonus int) {
	cell := &sh.scores[from][to]
	updated := int(cell.Add(int32(bonus)))
	if updated > MaxHistory {
		cell.Store(MaxHistory)
	} else if updated < -MaxHistory {
		cell.Store(-MaxHistory)
	}
}

// Clear resets the shared history table, used between searches of unrelated
// positions (e.g. a new game).
func (sh *SharedHistory) Clear() {
	for i := range sh.scores {
		for j := range sh.scores[i] {
			sh.scores[i][j].Store(0)
		}
	}
}
