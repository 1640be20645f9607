package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// genPhase enumerates the states of the staged move generator's pipeline:
// the TT move first, then good captures (SEE-filtered as they're drawn),
// then killers and the counter move, then the remaining quiets by history
// score, and finally the captures the SEE filter rejected earlier.
type genPhase int

const (
	genPV genPhase = iota
	genCalcCaptures
	genGoodCaptures
	genGenQuiet
	genKiller
	genCounterMove
	genQuiet
	genBadCaptures
	genDone
)

// scoredMove pairs a move with the ordering score it was staged under.
type scoredMove struct {
	move  board.Move
	score int
}

// OrderedMoveGen lazily stages legal moves for the main search in phases,
// so a beta cutoff reached early (typically on the TT move or a good
// capture) never pays the cost of scoring or sorting quiet moves at all.
// Moves already generated by GenerateLegalMoves are bucketed into
// good/bad captures and quiets as each phase is entered, not up front.
type OrderedMoveGen struct {
	moves  *board.MoveList
	ttMove board.Move

	killer1     board.Move
	killer2     board.Move
	counterMove board.Move

	phase genPhase

	captures    []scoredMove
	badCaptures []scoredMove
	quiets      []scoredMove

	quietsGenerated bool
	skipQuiets      bool
}

// NewOrderedMoveGen generates the legal moves for pos and prepares a
// phased picker over them. ply selects which killer-move slot to draw
// from; prevMove supplies the counter-move and counter-move-history lookup
// key.
func NewOrderedMoveGen(pos *board.Position, mo *MoveOrderer, ply int, ttMove, prevMove board.Move) *OrderedMoveGen {
	return NewOrderedMoveGenFromMoves(pos.GenerateLegalMoves(), pos, mo, ply, ttMove, prevMove)
}

// NewOrderedMoveGenFromMoves is NewOrderedMoveGen for a caller that already
// generated the legal move list (e.g. to check for checkmate/stalemate
// before staging move order), so the list isn't generated twice.
func NewOrderedMoveGenFromMoves(moves *board.MoveList, pos *board.Position, mo *MoveOrderer, ply int, ttMove, prevMove board.Move) *OrderedMoveGen {
	g := &OrderedMoveGen{
		moves:       moves,
		counterMove: mo.GetCounterMove(prevMove, pos),
		phase:       genPV,
	}

	if ply < MaxPly {
		g.killer1 = mo.killers[ply][0]
		g.killer2 = mo.killers[ply][1]
	}

	if ttMove != board.NoMove && moves.Contains(ttMove) {
		g.ttMove = ttMove
	}

	return g
}

// SetSkipQuiets tells the generator to jump straight to bad captures once
// the good-capture phase is exhausted, skipping killers/counter/quiets
// entirely. Used when the caller has already decided (futility, LMP) that
// no quiet move at this node will be searched.
func (g *OrderedMoveGen) SetSkipQuiets(v bool) {
	g.skipQuiets = v
}

// Next returns the next move in staged order, or board.NoMove once every
// move has been returned.
func (g *OrderedMoveGen) Next(pos *board.Position, mo *MoveOrderer, prevMove board.Move) board.Move {
	if g.skipQuiets {
		switch g.phase {
		case genGenQuiet, genKiller, genCounterMove, genQuiet:
			g.phase = genBadCaptures
		}
	}

	if g.phase == genPV {
		g.phase = genCalcCaptures
		if g.ttMove != board.NoMove {
			m := g.ttMove
			g.ttMove = board.NoMove
			return m
		}
	}

	if g.phase == genCalcCaptures {
		g.generateCaptures(pos, mo)
		g.phase = genGoodCaptures
	}

	if g.phase == genGoodCaptures {
		if m, ok := g.pickGoodCapture(pos); ok {
			return m
		}
		if g.skipQuiets {
			g.phase = genBadCaptures
		} else {
			g.phase = genGenQuiet
		}
	}

	if g.phase == genGenQuiet {
		g.generateQuiets(pos, mo, prevMove)
		g.phase = genKiller
	}

	if g.phase == genKiller {
		g.phase = genCounterMove
		if m, ok := g.takeQuiet(g.killer1); ok {
			return m
		}
		if m, ok := g.takeQuiet(g.killer2); ok {
			return m
		}
	}

	if g.phase == genCounterMove {
		g.phase = genQuiet
		if m, ok := g.takeQuiet(g.counterMove); ok {
			return m
		}
	}

	if g.phase == genQuiet {
		if m, ok := g.pickBest(&g.quiets); ok {
			return m
		}
		g.phase = genBadCaptures
	}

	if g.phase == genBadCaptures {
		if m, ok := g.pickBest(&g.badCaptures); ok {
			return m
		}
		g.phase = genDone
	}

	return board.NoMove
}

// generateCaptures buckets every capturing (or promoting-and-capturing)
// move other than the TT move, scored by the same MVV-LVA/capture-history
// formula scoreMove already uses.
func (g *OrderedMoveGen) generateCaptures(pos *board.Position, mo *MoveOrderer) {
	for i := 0; i < g.moves.Len(); i++ {
		m := g.moves.Get(i)
		if m == g.ttMove || !m.IsCapture(pos) {
			continue
		}
		g.captures = append(g.captures, scoredMove{m, mo.scoreMove(pos, m, 0, board.NoMove)})
	}
}

// generateQuiets buckets every non-capturing move other than the TT move,
// scored by quiet history plus a counter-move-history contribution, with
// queen promotions boosted above ordinary quiets and under-promotions
// pushed to the very bottom.
func (g *OrderedMoveGen) generateQuiets(pos *board.Position, mo *MoveOrderer, prevMove board.Move) {
	if g.quietsGenerated {
		return
	}
	g.quietsGenerated = true

	var prevPiece board.Piece
	if prevMove != board.NoMove {
		prevPiece = pos.PieceAt(prevMove.To())
	}
	stm := pos.SideToMove

	for i := 0; i < g.moves.Len(); i++ {
		m := g.moves.Get(i)
		if m == g.ttMove || m.IsCapture(pos) {
			continue
		}

		var score int
		if m.IsPromotion() {
			if m.Promotion() == board.Queen {
				score = GoodCaptureBase
			} else {
				score = -GoodCaptureBase
			}
		} else {
			movePiece := pos.PieceAt(m.From())
			score = int(mo.quietHistory[stm][m.From()][m.To()])
			score += mo.GetCountermoveHistoryScore(stm, prevMove, prevPiece, movePiece, m.To()) / 2
		}

		g.quiets = append(g.quiets, scoredMove{m, score})
	}
}

// pickGoodCapture draws the highest-scoring remaining capture and applies
// the SEE filter: a losing capture is set aside into badCaptures instead
// of being returned, and the scan continues until a winning capture is
// found or the bucket is empty.
func (g *OrderedMoveGen) pickGoodCapture(pos *board.Position) (board.Move, bool) {
	for {
		m, ok := g.pickBest(&g.captures)
		if !ok {
			return board.NoMove, false
		}
		if CompareSEE(pos, m, 0) {
			return m, true
		}
		g.badCaptures = append(g.badCaptures, scoredMove{m, 0})
	}
}

// pickBest removes and returns the highest-scoring move from bucket.
func (g *OrderedMoveGen) pickBest(bucket *[]scoredMove) (board.Move, bool) {
	list := *bucket
	if len(list) == 0 {
		return board.NoMove, false
	}

	best := 0
	for i := 1; i < len(list); i++ {
		if list[i].score > list[best].score {
			best = i
		}
	}

	m := list[best].move
	list[best] = list[len(list)-1]
	*bucket = list[:len(list)-1]
	return m, true
}

// takeQuiet removes target from the quiet bucket if present, e.g. for
// drawing out a killer move or the counter move ahead of history order.
func (g *OrderedMoveGen) takeQuiet(target board.Move) (board.Move, bool) {
	if target == board.NoMove {
		return board.NoMove, false
	}
	for i, sm := range g.quiets {
		if sm.move == target {
			g.quiets[i] = g.quiets[len(g.quiets)-1]
			g.quiets = g.quiets[:len(g.quiets)-1]
			return target, true
		}
	}
	return board.NoMove, false
}

// QSearchMoveGen stages captures for quiescence search: every capture is
// scored once, then SEE-filtered as it's drawn so a losing capture is
// discarded outright rather than ever being returned (quiescence never
// searches a capture that loses material).
type QSearchMoveGen struct {
	captures  []scoredMove
	generated bool
}

// NewQSearchMoveGen returns an empty generator; captures are generated
// lazily on the first call to Next.
func NewQSearchMoveGen() *QSearchMoveGen {
	return &QSearchMoveGen{}
}

// Next returns the next winning-or-equal capture in descending score
// order, its SEE value, and true; or board.NoMove, 0, false once the
// capture list is exhausted.
func (g *QSearchMoveGen) Next(pos *board.Position, mo *MoveOrderer) (board.Move, int, bool) {
	if !g.generated {
		g.generated = true
		moves := pos.GenerateCaptures()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			g.captures = append(g.captures, scoredMove{m, mo.scoreMove(pos, m, 0, board.NoMove)})
		}
	}

	for len(g.captures) > 0 {
		best := 0
		for i := 1; i < len(g.captures); i++ {
			if g.captures[i].score > g.captures[best].score {
				best = i
			}
		}
		m := g.captures[best].move
		g.captures[best] = g.captures[len(g.captures)-1]
		g.captures = g.captures[:len(g.captures)-1]

		seeValue := SEE(pos, m)
		if seeValue < 0 {
			continue
		}
		return m, seeValue, true
	}

	return board.NoMove, 0, false
}
