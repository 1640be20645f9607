// NNUE accumulator for incremental updates.
// Adapted from Stockfish src/nnue/nnue_accumulator.h/.cpp for a single
// network (no big/small split, no PSQT side channel).

package sfnnue

// SQNone marks an accumulator slot with no cached king square.
const SQNone = 64

// Accumulator holds, for each perspective, the MID-sized result of
// accumulating feature weight rows into the feature bias.
type Accumulator struct {
	Values [2][]int16 // [perspective][Mid]
	Computed [2]bool
	KingSq   [2]int
}

// NewAccumulator creates an accumulator sized for a network with the given
// Mid dimension.
func NewAccumulator(mid int) *Accumulator {
	return &Accumulator{
		Values:   [2][]int16{make([]int16, mid), make([]int16, mid)},
		Computed: [2]bool{false, false},
		KingSq:   [2]int{SQNone, SQNone},
	}
}

// Reset marks both perspectives as not computed.
func (a *Accumulator) Reset() {
	a.Computed[0] = false
	a.Computed[1] = false
	a.KingSq[0] = SQNone
	a.KingSq[1] = SQNone
}

// Copy copies values from other into a.
func (a *Accumulator) Copy(other *Accumulator) {
	copy(a.Values[0], other.Values[0])
	copy(a.Values[1], other.Values[1])
	a.Computed = other.Computed
	a.KingSq = other.KingSq
}

// MaxStackSize is the number of accumulator frames in a stack; Push does
// nothing once it is reached.
const MaxStackSize = 256

// AccumulatorStack manages one accumulator per ply during search, pushed
// on make and popped on unmake so that undo is a pointer decrement.
type AccumulatorStack struct {
	entries []Accumulator
	size    int
}

// NewAccumulatorStack creates a stack of accumulators for a network with
// the given Mid dimension.
func NewAccumulatorStack(mid int) *AccumulatorStack {
	s := &AccumulatorStack{
		entries: make([]Accumulator, MaxStackSize),
		size:    1,
	}
	for i := range s.entries {
		s.entries[i] = *NewAccumulator(mid)
	}
	return s
}

// Reset collapses the stack back to its root frame.
func (s *AccumulatorStack) Reset() {
	s.size = 1
	s.entries[0].Reset()
}

// Push duplicates the current accumulator onto a new frame, ready to be
// mutated in place by an incremental update.
func (s *AccumulatorStack) Push() {
	if s.size < MaxStackSize {
		s.entries[s.size].Copy(&s.entries[s.size-1])
		s.size++
	}
}

// Pop discards the current frame, returning to the previous one.
func (s *AccumulatorStack) Pop() {
	if s.size > 1 {
		s.size--
	}
}

// Current returns the accumulator for the current ply.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.entries[s.size-1]
}

// Previous returns the accumulator for the ply below the current one, or
// nil at the root.
func (s *AccumulatorStack) Previous() *Accumulator {
	if s.size > 1 {
		return &s.entries[s.size-2]
	}
	return nil
}
