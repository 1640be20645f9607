package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	GoodCaptureBase = 1000000  // Base score for good captures
	KillerScore1    = 900000   // First killer move
	KillerScore2    = 800000   // Second killer move
	BadCaptureBase  = -100000  // Losing captures
)

// MaxHistory bounds the magnitude every gravity-updated history table
// saturates towards; see UpdateHistory's bonus/malus formula.
const MaxHistory = 512

// maxHistoryDepth clamps the depth used to size a single update, so that one
// deep cutoff can't swing a cell by more than amt² in either direction.
const maxHistoryDepth = 20

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
// Score = 10 * (victim rank + 1) + 5 - attacker rank, with ranks P=0,
// N=B=1, R=2, Q=3, K=4 for attackers and P=0..Q=4 for victims
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0},       // King can't be captured
}

// MoveOrderer handles move ordering for the search. Every history table is
// indexed on the side to move at the time of the update, since a shared
// from/to or piece/to key says nothing about which side earned it.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move

	// Quiet history: [stm][from][to]
	quietHistory [2][64][64]int32

	// Capture history: [stm][from][to]
	captureHistory [2][64][64]int32

	// Counter-move history: [stm][prevPiece][prevTo][piece][to]
	counterMoveHistory [2][12][64][12][64]int32

	// Counter move table (plain move pointer, not a saturating score):
	// indexed by [piece][to] of the previous move.
	counterMoves [12][64]board.Move
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets the move orderer for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}

	mo.quietHistory = [2][64][64]int32{}
	mo.captureHistory = [2][64][64]int32{}
	mo.counterMoveHistory = [2][12][64][12][64]int32{}

	for i := range mo.counterMoves {
		for j := range mo.counterMoves[i] {
			mo.counterMoves[i][j] = board.NoMove
		}
	}
}

// ScoreMoves assigns scores to moves for ordering.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())

	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		scores[i] = mo.scoreMove(pos, move, ply, ttMove)
	}

	return scores
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	// TT move gets highest priority
	if m == ttMove {
		return TTMoveScore
	}

	from := m.From()
	to := m.To()
	stm := pos.SideToMove

	// Captures: MVV-LVA
	if m.IsCapture(pos) {
		attackerPiece := pos.PieceAt(from)
		if attackerPiece == board.NoPiece {
			return GoodCaptureBase // Safety check
		}
		attacker := attackerPiece.Type()

		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			capturedPiece := pos.PieceAt(to)
			if capturedPiece == board.NoPiece {
				// Safety check - shouldn't happen but prevents panic
				return GoodCaptureBase
			}
			victim = capturedPiece.Type()
		}

		// Bounds check for safety (victim should be < King for captures)
		if victim >= board.King || attacker > board.King {
			return GoodCaptureBase
		}

		// Check if it's a winning capture using MVV-LVA
		score := GoodCaptureBase + mvvLva[victim][attacker]*1000

		// Add capture history bonus
		captureHistScore := mo.GetCaptureHistoryScore(stm, from, to)
		score += captureHistScore / 4 // Scale appropriately

		// Bonus for capturing with a less valuable piece
		if pieceValues[attacker] < pieceValues[victim] {
			score += 10000 // Clearly winning capture
		}

		return score
	}

	// Promotions (non-capture)
	if m.IsPromotion() {
		return GoodCaptureBase - 1000 + int(m.Promotion())*100
	}

	// Killer moves
	if m == mo.killers[ply][0] {
		return KillerScore1
	}
	if m == mo.killers[ply][1] {
		return KillerScore2
	}

	// History heuristic for quiet moves
	return int(mo.quietHistory[stm][from][to])
}

// SortMoves sorts moves by their scores (descending).
func SortMoves(moves *board.MoveList, scores []int) {
	// Simple selection sort (sufficient for ~40 moves)
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			// Swap moves
			moves.Swap(i, best)
			// Swap scores
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove selects the best remaining move and moves it to position index.
// This allows lazy move sorting (only sort as much as needed).
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers adds a killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	// Ignore plies beyond the killer table
	if ply >= MaxPly {
		return
	}

	// Don't store if it's already the first killer
	if mo.killers[ply][0] == m {
		return
	}

	// Shift killers
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// gravityBonus nudges *value towards +MaxHistory. The amt²*value/MaxHistory
// term is what makes the table self-limiting: as value approaches MaxHistory
// the added bonus shrinks towards zero instead of needing an external clamp.
func gravityBonus(value *int32, depth int) {
	amt := depth
	if amt > maxHistoryDepth {
		amt = maxHistoryDepth
	}
	b := int32(amt * amt)
	*value += b - b*(*value)/MaxHistory
}

// gravityMalus is gravityBonus's mirror image, pulling *value towards
// -MaxHistory instead.
func gravityMalus(value *int32, depth int) {
	amt := depth
	if amt > maxHistoryDepth {
		amt = maxHistoryDepth
	}
	b := int32(amt * amt)
	*value -= b + b*(*value)/MaxHistory
}

// UpdateHistory applies the cutoff-move bonus to the quiet history table.
func (mo *MoveOrderer) UpdateHistory(stm board.Color, m board.Move, depth int) {
	gravityBonus(&mo.quietHistory[stm][m.From()][m.To()], depth)
}

// PenalizeHistory applies the malus for a quiet move that was tried at this
// node but did not cause the cutoff.
func (mo *MoveOrderer) PenalizeHistory(stm board.Color, m board.Move, depth int) {
	gravityMalus(&mo.quietHistory[stm][m.From()][m.To()], depth)
}

// UpdateCounterMove updates the counter move table.
func (mo *MoveOrderer) UpdateCounterMove(prevMove, counterMove board.Move, pos *board.Position) {
	if prevMove == board.NoMove {
		return
	}

	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return
	}

	mo.counterMoves[piece][prevMove.To()] = counterMove
}

// GetCounterMove returns the counter move for a previous move.
func (mo *MoveOrderer) GetCounterMove(prevMove board.Move, pos *board.Position) board.Move {
	if prevMove == board.NoMove {
		return board.NoMove
	}

	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return board.NoMove
	}

	return mo.counterMoves[piece][prevMove.To()]
}

// UpdateCaptureHistory applies the cutoff-move bonus to the capture history
// table.
func (mo *MoveOrderer) UpdateCaptureHistory(stm board.Color, m board.Move, depth int) {
	gravityBonus(&mo.captureHistory[stm][m.From()][m.To()], depth)
}

// PenalizeCaptureHistory applies the malus for a capture tried at this node
// that did not cause the cutoff.
func (mo *MoveOrderer) PenalizeCaptureHistory(stm board.Color, m board.Move, depth int) {
	gravityMalus(&mo.captureHistory[stm][m.From()][m.To()], depth)
}

// GetCaptureHistoryScore returns the capture history score for a capture move.
func (mo *MoveOrderer) GetCaptureHistoryScore(stm board.Color, from, to board.Square) int {
	return int(mo.captureHistory[stm][from][to])
}

// UpdateCountermoveHistory applies the cutoff-move bonus to the
// countermove-history table.
func (mo *MoveOrderer) UpdateCountermoveHistory(stm board.Color, prevMove, goodMove board.Move, prevPiece, movePiece board.Piece, depth int) {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return
	}
	gravityBonus(&mo.counterMoveHistory[stm][prevPiece][prevMove.To()][movePiece][goodMove.To()], depth)
}

// PenalizeCountermoveHistory applies the malus for a quiet move that had a
// counter-move history entry but did not cause the cutoff.
func (mo *MoveOrderer) PenalizeCountermoveHistory(stm board.Color, prevMove, triedMove board.Move, prevPiece, movePiece board.Piece, depth int) {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return
	}
	gravityMalus(&mo.counterMoveHistory[stm][prevPiece][prevMove.To()][movePiece][triedMove.To()], depth)
}

// GetCountermoveHistoryScore returns the CMH score for a move given the previous move.
func (mo *MoveOrderer) GetCountermoveHistoryScore(stm board.Color, prevMove board.Move, prevPiece, movePiece board.Piece, moveTo board.Square) int {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return 0
	}
	return int(mo.counterMoveHistory[stm][prevPiece][prevMove.To()][movePiece][moveTo])
}
