package engine

import (
	"sync/atomic"
	"time"

	"github.com/kestrelchess/core/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	// TimeoutScore is the sentinel negamax returns when the deadline or stop
	// flag fires mid-search. Its magnitude is strictly greater than Infinity
	// so every caller can recognize it, negate it, and propagate it upward
	// without ever storing it in the transposition table or treating it as
	// a game-theoretic value.
	TimeoutScore = Infinity + 1

	// HistoryDivisor scales quiet_history into an LMR reduction term.
	HistoryDivisor = 4096

	// RFPScale is the per-depth margin used by reverse futility pruning.
	RFPScale = 80
)

// isTimeout reports whether score is the timeout sentinel, at any sign
// (negamax negates it on the way back up through each ply).
func isTimeout(score int) bool {
	return score > Infinity || score < -Infinity
}

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs the alpha-beta search. One Searcher instance is reused
// across the iterative-deepening loop of a single `go` command, and across
// `go` commands within a game, so killer/history tables carry forward the
// way a single-threaded engine's do; Reset only runs on `ucinewgame`.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	corr    *CorrectionHistory

	nodes    uint64
	stopFlag atomic.Bool

	// deadline is the wall-clock time negamax polls against every 16 nodes.
	// The zero Time means "no deadline" (depth-limited or infinite search).
	deadline time.Time

	// staticEval records the static evaluation seen at each ply this search,
	// used by the "improving" heuristic that scales RFP/LMP/futility margins.
	staticEval [MaxPly]int

	// excluded holds root moves to skip, used by SearchMultiPV to find
	// successive principal variations without re-finding earlier ones.
	excluded []board.Move

	pv PVTable
}

// NewSearcher creates a new searcher.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		corr:    NewCorrectionHistory(),
	}
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears killers, counter moves and correction history and halves the
// history tables (MoveOrderer.Clear); it is the
// `ucinewgame` boundary, not something run between iterative-deepening
// depths within the same search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
	s.corr.Clear()
	staticEvaluator.Reset()
}

// Prepare readies the searcher for a fresh `go` command: it takes its own
// copy of pos (so the caller's position is never mutated by search),
// attaches the NNUE hook, and arms the deadline negamax polls every 16
// nodes. A zero deadline means no time limit.
func (s *Searcher) Prepare(pos *board.Position, deadline time.Time) {
	s.pos = pos.Copy()
	AttachNNUE(s.pos)
	s.nodes = 0
	s.stopFlag.Store(false)
	s.deadline = deadline
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// IsStopped returns true if the search was signaled to stop.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// SetExcludedMoves sets root moves to skip during the next Search, used by
// SearchMultiPV to find successive principal variations.
func (s *Searcher) SetExcludedMoves(moves []board.Move) {
	s.excluded = moves
}

func (s *Searcher) isExcludedAtRoot(ply int, move board.Move) bool {
	if ply != 0 || len(s.excluded) == 0 {
		return false
	}
	for _, m := range s.excluded {
		if m == move {
			return true
		}
	}
	return false
}

// BestMove returns the root move of the last completed search's PV.
func (s *Searcher) BestMove() board.Move {
	if s.pv.length[0] == 0 {
		return board.NoMove
	}
	return s.pv.moves[0][0]
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	for i := 0; i < s.pv.length[0]; i++ {
		pv[i] = s.pv.moves[0][i]
	}
	return pv
}

// ClearOrderer clears killer/history move-ordering state, keeping the
// transposition table intact.
func (s *Searcher) ClearOrderer() {
	s.orderer.Clear()
}

// SearchDepth runs one iterative-deepening iteration at depth, assuming
// Prepare has already been called. Returns the side-to-move-relative root
// score, which may be the timeout sentinel.
func (s *Searcher) SearchDepth(depth, alpha, beta int) int {
	return s.negamax(depth, 0, alpha, beta)
}

// SearchAspiration runs one iteration with an aspiration window around
// prevScore once depth reaches 5: Δ starts at 25 and grows 50% per
// retry, widening toward whichever bound failed, falling back to a full
// window after 4 retries.
func (s *Searcher) SearchAspiration(depth, prevScore int) int {
	if depth < 5 {
		return s.negamax(depth, 0, -Infinity, Infinity)
	}

	delta := 25
	alpha := prevScore - delta
	beta := prevScore + delta
	if alpha < -Infinity {
		alpha = -Infinity
	}
	if beta > Infinity {
		beta = Infinity
	}

	for attempt := 0; attempt < 4; attempt++ {
		score := s.negamax(depth, 0, alpha, beta)
		if isTimeout(score) {
			return score
		}
		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha = score - delta
			if alpha < -Infinity {
				alpha = -Infinity
			}
		} else if score >= beta {
			beta = score + delta
			if beta > Infinity {
				beta = Infinity
			}
		} else {
			return score
		}
		delta += delta / 2
	}

	return s.negamax(depth, 0, -Infinity, Infinity)
}

// pollClock checks the stop flag and deadline every 16 nodes.
func (s *Searcher) pollClock() bool {
	if s.nodes&15 != 0 {
		return false
	}
	if s.stopFlag.Load() {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// isDraw checks for draw by repetition, 50-move rule, or insufficient
// material.
func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	if s.pos.Repetitions >= 3 {
		return true
	}
	return s.pos.IsInsufficientMaterial()
}

// validateHashMove rejects a TT move that no longer matches the position
// (stale entry from a hash collision), before IsLegal is trusted to run on
// it.
func (s *Searcher) validateHashMove(m board.Move) board.Move {
	if m == board.NoMove {
		return board.NoMove
	}
	piece := s.pos.PieceAt(m.From())
	if piece == board.NoPiece || piece.Color() != s.pos.SideToMove {
		return board.NoMove
	}
	if !s.pos.IsLegal(m) {
		return board.NoMove
	}
	return m
}

// updatePV splices move onto the front of ply's PV, reusing ply+1's tail.
func (s *Searcher) updatePV(ply int, move board.Move) {
	s.pv.moves[ply][ply] = move
	for j := ply + 1; j < s.pv.length[ply+1]; j++ {
		s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
	}
	s.pv.length[ply] = s.pv.length[ply+1]
}

// negamax implements the negamax algorithm with alpha-beta pruning,
// transposition-table probing, and a set of selective prunes and extensions.
// It returns a side-to-move-relative score in [-Infinity-1, Infinity+1]; a
// magnitude strictly greater than Infinity is the timeout sentinel.
func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	if ply >= MaxPly-1 {
		return Evaluate(s.pos)
	}

	s.nodes++
	if s.pollClock() {
		return TimeoutScore
	}

	s.pv.length[ply] = ply

	rootNode := ply == 0
	pvNode := beta-alpha > 1

	if !rootNode {
		if s.isDraw() {
			return 0
		}

		// Mate-distance pruning: no sequence from here can be better than
		// mating in `ply` plies, or worse than being mated next ply.
		if a := -MateScore + ply; alpha < a {
			alpha = a
		}
		if b := MateScore - ply - 1; beta > b {
			beta = b
		}
		if alpha >= beta {
			return alpha
		}
	}

	var ttMove board.Move
	ttEntry, ttFound := s.tt.Probe(s.pos.Hash)
	if ttFound {
		ttMove = s.validateHashMove(ttEntry.BestMove)

		inRepetitionWindow := s.pos.Repetitions == 2 &&
			s.pos.HalfMoves-s.pos.LastThreefoldReset < 90 &&
			s.pos.AllOccupied.PopCount() > 3

		if int(ttEntry.Depth) >= depth && !pvNode && !inRepetitionWindow {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score >= beta {
					return score
				}
			case TTUpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.pos.InCheck()

	staticEval := 0
	if !inCheck {
		staticEval = Evaluate(s.pos) + s.corr.Get(s.pos)
	}
	s.staticEval[ply] = staticEval
	improving := !inCheck && ply >= 2 && staticEval > s.staticEval[ply-2]

	// Reverse futility pruning.
	if !pvNode && !inCheck && depth <= 8 {
		margin := RFPScale * depth
		if improving {
			margin -= RFPScale / 4
		}
		if staticEval-margin >= beta {
			return staticEval
		}
	}

	// Null-move pruning.
	if !pvNode && !inCheck && depth >= 3 && s.pos.Hash != 0 &&
		s.pos.HasNonPawnMaterial() && staticEval >= beta {
		r := 3 + depth/4
		undo := s.pos.MakeNullMove()
		nullScore := -s.negamax(depth-1-r, ply+1, -beta, -beta+1)
		s.pos.UnmakeNullMove(undo)

		if isTimeout(nullScore) {
			return nullScore
		}
		if nullScore >= beta {
			if nullScore > MateScore-MaxPly {
				nullScore = MateScore - MaxPly
			}
			return nullScore
		}
	}

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	moveCount := 0
	prevMove := board.NoMove
	if len(s.pos.MoveStack) > 0 {
		prevMove = s.pos.MoveStack[len(s.pos.MoveStack)-1].Move
	}

	// Hash move first, with a small single-ply check extension.
	if ttMove != board.NoMove && !s.isExcludedAtRoot(ply, ttMove) {
		ttMoveIsCapture := ttMove.IsCapture(s.pos)
		s.pos.Make(ttMove)
		givesCheck := s.pos.InCheck()
		newDepth := depth - 1
		if givesCheck {
			newDepth++
		}
		score := -s.negamax(newDepth, ply+1, -beta, -alpha)
		s.pos.Unmake()
		moveCount++

		if isTimeout(score) {
			return score
		}

		if score > bestScore {
			bestScore = score
			bestMove = ttMove
			if score > alpha {
				alpha = score
				flag = TTExact
				s.updatePV(ply, ttMove)
			}
		}
		if score >= beta {
			if s.pos.Hash != 0 {
				s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, ttMove)
			}
			if !ttMoveIsCapture {
				s.orderer.UpdateKillers(ttMove, ply)
				s.orderer.UpdateHistory(ttMove, depth, true)
			} else {
				s.rewardCapture(ttMove, depth)
			}
			return score
		}
	}

	picker := NewMovePicker(s.pos, s.orderer, ply, ttMove)
	quietCount := 0

	for {
		move, stage, ok := picker.Next()
		if !ok {
			break
		}
		if s.isExcludedAtRoot(ply, move) {
			continue
		}

		isCapture := stage != StageQuiets

		// Late move pruning: once enough quiets have been tried at a
		// shallow node, skip the rest of the QUIETS stage.
		if !rootNode && stage == StageQuiets && depth <= 5 {
			threshold := 3 + 2*depth*depth
			if !improving {
				threshold = threshold * 2 / 3
			}
			if quietCount >= threshold {
				picker.SkipToBadTactics()
				continue
			}
		}

		// Futility pruning: a quiet move that can't plausibly raise alpha
		// at a shallow non-PV node is skipped once a move has been tried.
		if !pvNode && !inCheck && stage == StageQuiets && depth <= 5 && moveCount > 0 {
			if staticEval+100+100*depth <= alpha {
				picker.SkipToBadTactics()
				continue
			}
		}

		// Capture futility: a losing capture that still can't reach alpha
		// even counting its material and capture-history score is skipped.
		if !inCheck && stage == StageBadTactics && depth <= 4 {
			captured := capturedValue(s.pos, move)
			captureHist := s.orderer.GetCaptureHistoryScore(s.pos.PieceAt(move.From()), move.To(), capturedPieceType(s.pos, move))
			if staticEval+100+120*depth+captured+captureHist/32 <= alpha {
				continue
			}
		}

		// Quiet SEE pruning: skip quiets that hang too much material.
		if stage == StageQuiets && depth <= 6 && !SEEGE(s.pos, move, -20*depth) {
			continue
		}

		isKiller := stage == StageQuiets && (move == s.orderer.killers[ply][0] || move == s.orderer.killers[ply][1])
		isRecapture := prevMove != board.NoMove && move.To() == prevMove.To() && isCapture

		s.pos.Make(move)
		moveCount++
		if stage == StageQuiets {
			quietCount++
		}
		givesCheck := s.pos.InCheck()

		newDepth := depth - 1
		var score int

		reduction := 0
		if depth >= 3 && moveCount >= 3 && !inCheck {
			reduction = 1
			if moveCount >= 10 && depth >= 8 {
				reduction++
			}
			if moveCount >= 15 {
				reduction++
			}
			if pvNode {
				reduction--
			}
			if isKiller {
				reduction--
			}
			if isCapture {
				reduction--
			}
			if isRecapture {
				reduction--
			}
			if stage == StageQuiets {
				reduction -= s.orderer.GetHistoryScore(move) / HistoryDivisor
			}
			if stage == StageGoodTactics && givesCheck {
				reduction--
			}
			if reduction < -1 {
				reduction = -1
			}
		}

		if moveCount == 1 {
			score = -s.negamax(newDepth, ply+1, -beta, -alpha)
		} else {
			reducedDepth := newDepth - reduction
			if reducedDepth < 1 {
				reducedDepth = 1
			}
			score = -s.negamax(reducedDepth, ply+1, -alpha-1, -alpha)
			if !isTimeout(score) && score > alpha && (reduction > 0 || pvNode) {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha)
			}
		}

		s.pos.Unmake()

		if isTimeout(score) {
			return score
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				flag = TTExact
				s.updatePV(ply, move)
			}
		}

		if score >= beta {
			if s.pos.Hash != 0 {
				s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)
			}
			if stage == StageQuiets {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth, true)
				if prevMove != board.NoMove {
					s.orderer.UpdateCounterMove(prevMove, move, s.pos)
				}
			} else {
				s.rewardCapture(move, depth)
			}
			return score
		}
	}

	if bestMove == board.NoMove && moveCount == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	if flag == TTExact && !inCheck && depth >= 2 {
		s.corr.Update(s.pos, bestScore, staticEval, depth)
	}

	if s.pos.Hash != 0 {
		s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	}

	return bestScore
}

// rewardCapture records a capture-history bonus after move causes a beta
// cutoff. It must be called with s.pos still in the pre-move state (the
// position Unmake restored).
func (s *Searcher) rewardCapture(move board.Move, depth int) {
	attacker := s.pos.PieceAt(move.From())
	if attacker == board.NoPiece {
		return
	}
	s.orderer.UpdateCaptureHistory(attacker, move.To(), capturedPieceType(s.pos, move), depth, true)
}

// capturedValue returns the material value of whatever move captures,
// including en-passant and promotion bonuses, for futility margins.
func capturedValue(pos *board.Position, m board.Move) int {
	var value int
	if m.IsEnPassant(pos) {
		value = PawnValue
	} else if captured := pos.PieceAt(m.To()); captured != board.NoPiece {
		value = pieceValues[captured.Type()]
	}
	if m.IsPromotion() {
		value += pieceValues[m.Promotion()] - PawnValue
	}
	return value
}

func capturedPieceType(pos *board.Position, m board.Move) board.PieceType {
	if m.IsEnPassant(pos) {
		return board.Pawn
	}
	if captured := pos.PieceAt(m.To()); captured != board.NoPiece {
		return captured.Type()
	}
	return board.Pawn
}

// quiescence searches only captures (and, in check, every evasion) to avoid
// the horizon effect.
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	const maxQuiescencePly = 32

	s.nodes++
	if s.pollClock() {
		return TimeoutScore
	}
	if ply >= MaxPly-1 || ply > maxQuiescencePly {
		return Evaluate(s.pos)
	}

	inCheck := s.pos.InCheck()
	standPat := -Infinity
	if !inCheck {
		standPat = Evaluate(s.pos)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		if standPat+QueenValue < alpha {
			return alpha
		}
	}

	var moves *board.MoveList
	if inCheck {
		moves = board.GenerateLegalMoves(s.pos, board.All)
	} else {
		moves = board.GenerateLegalMoves(s.pos, board.Tactic)
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)
	SortMoves(moves, scores)

	legalSeen := 0
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)

		if !inCheck {
			gain := capturedValue(s.pos, move)
			if standPat+gain+200 < alpha {
				continue
			}
			if !SEEGE(s.pos, move, alpha-standPat-50) {
				continue
			}
		}

		legalSeen++
		s.pos.Make(move)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.Unmake()

		if isTimeout(score) {
			return score
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	if inCheck && legalSeen == 0 {
		return -MateScore + ply
	}

	return alpha
}
