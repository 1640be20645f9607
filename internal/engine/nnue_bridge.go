package engine

import (
	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/sfnnue"
	"github.com/hailam/chesscore/sfnnue/features"
)

// DirtyPiece tracks a piece change for incremental accumulator updates.
// FromSq = -1 means the piece was added (not moved from anywhere).
// ToSq = -1 means the piece was removed (captured).
type DirtyPiece struct {
	Piece  int // sfnnue piece encoding (1-14)
	FromSq int // source square (-1 if added)
	ToSq   int // destination square (-1 if removed)
}

// MaxDirtyPieces is the maximum number of ordinary (non-threat) piece
// changes per move: normal move 1, capture 2, en passant 2,
// promotion+capture 3.
const MaxDirtyPieces = 3

// DirtyState tracks piece changes for incremental NNUE updates.
type DirtyState struct {
	Pieces    [MaxDirtyPieces]DirtyPiece
	Count     int
	KingMoved [2]bool // whether king moved for each perspective
	Computed  bool
}

// sfnnuePieceTable maps [color][pieceType] to sfnnue piece encoding.
// board types: Pawn=0, Knight=1, Bishop=2, Rook=3, Queen=4, King=5.
// sfnnue types: W_PAWN=1, W_KNIGHT=2, ..., B_PAWN=9, B_KNIGHT=10, ...
var sfnnuePieceTable = [2][6]int{
	{1, 2, 3, 4, 5, 6},      // White
	{9, 10, 11, 12, 13, 14}, // Black
}

// trailingZeros64 returns the number of trailing zero bits in x.
func trailingZeros64(x uint64) int {
	if x == 0 {
		return 64
	}
	n := 0
	if x&0xFFFFFFFF == 0 {
		n += 32
		x >>= 32
	}
	if x&0xFFFF == 0 {
		n += 16
		x >>= 16
	}
	if x&0xFF == 0 {
		n += 8
		x >>= 8
	}
	if x&0xF == 0 {
		n += 4
		x >>= 4
	}
	if x&0x3 == 0 {
		n += 2
		x >>= 2
	}
	if x&0x1 == 0 {
		n++
	}
	return n
}

func popCount64(x uint64) int {
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}

func countPieces(pos *board.Position) int {
	return popCount64(uint64(pos.AllOccupied))
}

// threatenedSet returns, for each of the four threat kinds, the bitboard
// of squares holding a piece of color threatenedColor that is attacked by
// an opposing piece of that kind. Built by re-querying the board's
// attack-bitboard accessors for every piece on the board: sliding-piece
// threats can appear or disappear anywhere a discovered line opens, so a
// targeted incremental diff would still need to re-examine every ray
// through the moved/captured squares. A full rescan is O(32) attack
// queries, the same order of work move generation already pays per node,
// and keeps this code simple and obviously correct.
func threatenedSet(pos *board.Position, threatenedColor board.Color) [features.ThreatKindNB]board.Bitboard {
	var out [features.ThreatKindNB]board.Bitboard
	attacker := threatenedColor.Other()
	occ := pos.AllOccupied

	for kind := 0; kind < features.ThreatKindNB; kind++ {
		var pt board.PieceType
		switch kind {
		case features.ThreatKnight:
			pt = board.Knight
		case features.ThreatBishop:
			pt = board.Bishop
		case features.ThreatRook:
			pt = board.Rook
		case features.ThreatQueen:
			pt = board.Queen
		}

		targets := pos.Occupied[threatenedColor]
		for targets != 0 {
			sq := targets.PopLSB()
			if attacksOfType(pos, board.Square(sq), pt, occ)&pos.Pieces[attacker][pt] != 0 {
				// Attacks are symmetric for these piece types: a piece of
				// type pt on sq would attack exactly the opposing pieces of
				// type pt that attack sq.
				out[kind] |= board.SquareBB(board.Square(sq))
			}
		}
	}
	return out
}

// attacksOfType returns the attack bitboard for a piece of type pt
// standing on sq, reusing the same attack-generation functions move
// generation uses (attacks are symmetric: "can X attack sq" is the same
// query as "what does a piece of X's type standing on sq attack").
func attacksOfType(pos *board.Position, sq board.Square, pt board.PieceType, occ board.Bitboard) board.Bitboard {
	switch pt {
	case board.Knight:
		return board.KnightAttacks(sq)
	case board.Bishop:
		return board.BishopAttacks(sq, occ)
	case board.Rook:
		return board.RookAttacks(sq, occ)
	case board.Queen:
		return board.BishopAttacks(sq, occ) | board.RookAttacks(sq, occ)
	}
	return 0
}

// appendActiveIndicesDirect computes active feature indices directly from
// board.Position, avoiding interface dispatch. Includes the ordinary
// piece-square features and the threat features for both colors.
func appendActiveIndicesDirect(perspective int, pos *board.Position, active *features.IndexList) {
	ksq := int(pos.KingSquare[perspective])

	for c := 0; c < 2; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			sfPiece := sfnnuePieceTable[c][int(pt)]
			bb := uint64(pos.Pieces[c][pt])
			for bb != 0 {
				sq := trailingZeros64(bb)
				bb &= bb - 1
				active.Push(features.MakeIndex(perspective, sq, sfPiece, ksq))
			}
		}
	}

	for color := board.Color(0); color <= board.Black; color++ {
		threatened := threatenedSet(pos, color)
		for kind, bb := range threatened {
			b := uint64(bb)
			for b != 0 {
				sq := trailingZeros64(b)
				b &= b - 1
				active.Push(features.ThreatMakeIndex(perspective, sq, kind, int(color), ksq))
			}
		}
	}
}

// computeDirtyPieces computes NNUE feature changes for a move.
// Must be called BEFORE MakeMove, while the position still has its
// pre-move state. Returns true if an incremental update is possible (no
// king move for either perspective); the threat-set diff is always
// computed by rescan, in ensureAccumulatorComputed, regardless of this
// return value.
func (w *Worker) computeDirtyPieces(m board.Move) bool {
	if !w.useNNUE || w.nnueAcc == nil {
		return false
	}

	w.dirtyState.Count = 0
	w.dirtyState.KingMoved[0] = false
	w.dirtyState.KingMoved[1] = false
	w.dirtyState.Computed = false

	pos := w.pos
	from := m.From()
	to := m.To()
	movingPiece := pos.PieceAt(from)
	if movingPiece == board.NoPiece {
		return false
	}

	us := int(movingPiece.Color())
	pt := movingPiece.Type()
	sfPiece := sfnnuePieceTable[us][int(pt)]

	if pt == board.King || m.IsCastling() {
		w.dirtyState.KingMoved[us] = true
		w.dirtyState.Computed = true
		return false
	}

	w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{Piece: sfPiece, FromSq: int(from), ToSq: int(to)}
	w.dirtyState.Count++

	if m.IsEnPassant() {
		var capturedSq board.Square
		if us == int(board.White) {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		capturedSfPiece := sfnnuePieceTable[1-us][board.Pawn]
		w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{Piece: capturedSfPiece, FromSq: int(capturedSq), ToSq: -1}
		w.dirtyState.Count++
	} else if capturedPiece := pos.PieceAt(to); capturedPiece != board.NoPiece {
		capturedSfPiece := sfnnuePieceTable[capturedPiece.Color()][capturedPiece.Type()]
		w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{Piece: capturedSfPiece, FromSq: int(to), ToSq: -1}
		w.dirtyState.Count++
	}

	if m.IsPromotion() {
		promoSfPiece := sfnnuePieceTable[us][int(m.Promotion())]
		// Fix the moving-piece entry: the pawn disappears, the promoted
		// piece appears at the destination.
		w.dirtyState.Pieces[0] = DirtyPiece{Piece: sfPiece, FromSq: int(from), ToSq: -1}
		w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{Piece: promoSfPiece, FromSq: -1, ToSq: int(to)}
		w.dirtyState.Count++
	}

	w.dirtyState.Computed = true
	return true
}

// computeFeatureDeltas computes removed/added ordinary piece-square
// feature indices for an incremental update, into pre-allocated buffers.
func (w *Worker) computeFeatureDeltas(perspective, ksq int) (removed, added []int) {
	removedBuf := w.activeIndicesBuffer[0:32]
	addedBuf := w.activeIndicesBuffer[32:64]
	removedCount := 0
	addedCount := 0

	for i := 0; i < w.dirtyState.Count; i++ {
		dp := &w.dirtyState.Pieces[i]
		if dp.FromSq >= 0 {
			removedBuf[removedCount] = features.MakeIndex(perspective, dp.FromSq, dp.Piece, ksq)
			removedCount++
		}
		if dp.ToSq >= 0 {
			addedBuf[addedCount] = features.MakeIndex(perspective, dp.ToSq, dp.Piece, ksq)
			addedCount++
		}
	}

	return removedBuf[:removedCount], addedBuf[:addedCount]
}

// threatFeatureDelta diffs the before/after threatened sets for one color
// and appends the resulting removed/added threat feature indices.
func threatFeatureDelta(perspective int, before, after [features.ThreatKindNB]board.Bitboard, color board.Color, ksq int, removed, added *[]int) {
	for kind := 0; kind < features.ThreatKindNB; kind++ {
		goneAway := before[kind] &^ after[kind]
		newlyThreatened := after[kind] &^ before[kind]
		for goneAway != 0 {
			sq := goneAway.PopLSB()
			*removed = append(*removed, features.ThreatMakeIndex(perspective, int(sq), kind, int(color), ksq))
		}
		for newlyThreatened != 0 {
			sq := newlyThreatened.PopLSB()
			*added = append(*added, features.ThreatMakeIndex(perspective, int(sq), kind, int(color), ksq))
		}
	}
}

// ensureAccumulatorComputed updates or recomputes acc for both
// perspectives: an incremental delta when the king didn't move for that
// perspective and a previous accumulator is available, otherwise a full
// recompute. The threat-feature delta is always derived by rescanning the
// position before and after the move (see threatenedSet).
func (w *Worker) ensureAccumulatorComputed(net *sfnnue.Network, acc *sfnnue.Accumulator) {
	prevAcc := w.nnueAcc.Previous()

	for perspective := 0; perspective < 2; perspective++ {
		if acc.Computed[perspective] {
			continue
		}

		canIncremental := prevAcc != nil && prevAcc.Computed[perspective] &&
			w.dirtyState.Computed && !w.dirtyState.KingMoved[perspective]

		if canIncremental {
			ksq := int(w.pos.KingSquare[perspective])
			removed, added := w.computeFeatureDeltas(perspective, ksq)

			threatRemoved := append([]int(nil), removed...)
			threatAdded := append([]int(nil), added...)
			before := w.prevThreats
			after := [2][features.ThreatKindNB]board.Bitboard{
				threatenedSet(w.pos, board.White),
				threatenedSet(w.pos, board.Black),
			}
			threatFeatureDelta(perspective, before[board.White], after[board.White], board.White, ksq, &threatRemoved, &threatAdded)
			threatFeatureDelta(perspective, before[board.Black], after[board.Black], board.Black, ksq, &threatRemoved, &threatAdded)

			net.ForwardUpdatePerspective(prevAcc, acc, threatRemoved, threatAdded, perspective)
			acc.KingSq[perspective] = ksq
		} else {
			net.RefreshPerspective(acc, perspective, w.activeFeatureIndices(perspective), int(w.pos.KingSquare[perspective]))
		}
	}
}

// activeFeatureIndices returns the full active-feature index list for a
// perspective, backed by the worker's pre-allocated buffer.
func (w *Worker) activeFeatureIndices(perspective int) []int {
	var activeList features.IndexList
	appendActiveIndicesDirect(perspective, w.pos, &activeList)
	idx := w.activeIndicesBuffer[:activeList.Size]
	copy(idx, activeList.Values[:activeList.Size])
	return idx
}

// nnueEvaluate performs NNUE evaluation for the worker's current position.
// initNNUE is called for every worker before any search runs (see
// NewEngine and newDefaultNetwork), so nnueNet and nnueAcc are always set
// here.
func (w *Worker) nnueEvaluate() int {
	pieceCount := countPieces(w.pos)
	sideToMove := 0
	if w.pos.SideToMove == board.Black {
		sideToMove = 1
	}

	acc := w.nnueAcc.Current()
	w.ensureAccumulatorComputed(w.nnueNet, acc)

	score := int(w.nnueNet.Propagate(acc.Values[sideToMove], acc.Values[1-sideToMove], pieceCount))

	optimism := w.optimism[sideToMove]
	pawnCount := popCount64(uint64(w.pos.Pieces[board.White][board.Pawn])) +
		popCount64(uint64(w.pos.Pieces[board.Black][board.Pawn]))
	material := 534*pawnCount + nonPawnMaterial(w.pos)
	score += optimism * (7191 + material) / 77871

	rule50 := int(w.pos.HalfMoveClock)
	score -= score * rule50 / 199

	return score
}

// nonPawnMaterial returns the total non-pawn material value on the board,
// used for scaling the optimism adjustment above.
func nonPawnMaterial(pos *board.Position) int {
	pieceValues := [6]int{0, 320, 330, 500, 900, 0}
	total := 0
	for c := 0; c < 2; c++ {
		for pt := board.Knight; pt <= board.Queen; pt++ {
			total += popCount64(uint64(pos.Pieces[c][pt])) * pieceValues[pt]
		}
	}
	return total
}

// resetNNUEAccumulators marks the accumulator stack as needing
// recomputation from scratch.
func (w *Worker) resetNNUEAccumulators() {
	if w.nnueAcc != nil {
		w.nnueAcc.Reset()
	}
	w.prevThreats[board.White] = [features.ThreatKindNB]board.Bitboard{}
	w.prevThreats[board.Black] = [features.ThreatKindNB]board.Bitboard{}
}

// nnuePush saves accumulator state before making a move. The dirty pieces
// and pre-move threatened sets must already be recorded via
// computeDirtyPieces/snapshotThreats.
func (w *Worker) nnuePush() {
	if !w.useNNUE || w.nnueAcc == nil {
		return
	}
	w.nnueAcc.Push()
	curr := w.nnueAcc.Current()

	if !w.dirtyState.Computed {
		curr.Computed[0] = false
		curr.Computed[1] = false
		return
	}
	for p := 0; p < 2; p++ {
		if w.dirtyState.KingMoved[p] {
			curr.Computed[p] = false
		} else {
			curr.Computed[p] = false // inherited values still need the delta applied
		}
	}
}

// nnuePop restores accumulator state after unmaking a move.
func (w *Worker) nnuePop() {
	if w.useNNUE && w.nnueAcc != nil {
		w.nnueAcc.Pop()
	}
}

// snapshotThreats records the pre-move threatened sets; must be called
// before MakeMove alongside computeDirtyPieces so ensureAccumulatorComputed
// can diff against them after the move is applied.
func (w *Worker) snapshotThreats() {
	if !w.useNNUE {
		return
	}
	w.prevThreats[board.White] = threatenedSet(w.pos, board.White)
	w.prevThreats[board.Black] = threatenedSet(w.pos, board.Black)
}
