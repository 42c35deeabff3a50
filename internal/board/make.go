package board

// Make applies a move to the position, pushing an UndoInfo record onto
// MoveStack so a matching Unmake can restore everything exactly, and
// driving the NNUE accumulator hook (if set) through the same dirty-piece
// list the hidden-layer update needs.
func (p *Position) Make(m Move) {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)
	pt := piece.Type()

	isEnPassant := pt == Pawn && p.EnPassant != NoSquare && to == p.EnPassant
	isCastling := pt == King && (int(to.Col())-int(from.Col()) == 2 || int(to.Col())-int(from.Col()) == -2)

	undo := UndoInfo{
		Move:               m,
		MovedPiece:         piece,
		CapturedPiece:      NoPiece,
		CapturedSquare:     NoSquare,
		CastlingRights:     p.CastlingRights,
		EnPassant:          p.EnPassant,
		HalfMoveClock:      p.HalfMoveClock,
		LastThreefoldReset: p.LastThreefoldReset,
		Repetitions:        p.Repetitions,
		Hash:               p.Hash,
		PawnKey:            p.PawnKey,
		WhiteMaterial:      p.WhiteMaterial,
		BlackMaterial:      p.BlackMaterial,
		KingSquare:         p.KingSquare,
	}

	// Step 1: snapshot NNUE accumulators before any board mutation.
	if p.NNUE != nil {
		p.NNUE.Push()
	}

	dc := 0
	pushDirty := func(pc Piece, fromSq, toSq Square) {
		undo.DirtyPiece[dc] = pc
		undo.DirtyFrom[dc] = fromSq
		undo.DirtyTo[dc] = toSq
		dc++
	}

	// XOR out state that may change: side to move, castling, en passant.
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	// Step 3: clear from-square, XOR hash.
	p.removePiece(from)
	p.Hash ^= zobristPiece[us][pt][from]
	if pt == Pawn {
		p.PawnKey ^= zobristPiece[us][Pawn][from]
	}

	// Step 4: handle capture, including en passant; adjust material and
	// opposing castling rights if a corner rook was captured.
	if isEnPassant {
		var capSq Square
		if us == White {
			capSq = to + 8
		} else {
			capSq = to - 8
		}
		captured := p.removePiece(capSq)
		undo.CapturedPiece = captured
		undo.CapturedSquare = capSq
		p.Hash ^= zobristPiece[them][Pawn][capSq]
		p.PawnKey ^= zobristPiece[them][Pawn][capSq]
		if us == White {
			p.BlackMaterial -= captured.Value()
		} else {
			p.WhiteMaterial -= captured.Value()
		}
		pushDirty(captured, capSq, NoSquare)
	} else if captured := p.PieceAt(to); captured != NoPiece {
		p.removePiece(to)
		undo.CapturedPiece = captured
		undo.CapturedSquare = to
		p.Hash ^= zobristPiece[them][captured.Type()][to]
		if captured.Type() == Pawn {
			p.PawnKey ^= zobristPiece[them][Pawn][to]
		}
		if us == White {
			p.BlackMaterial -= captured.Value()
		} else {
			p.WhiteMaterial -= captured.Value()
		}
		pushDirty(captured, to, NoSquare)

		if captured.Type() == Rook {
			switch to {
			case A1:
				p.CastlingRights &^= WhiteQueenSideCastle
			case H1:
				p.CastlingRights &^= WhiteKingSideCastle
			case A8:
				p.CastlingRights &^= BlackQueenSideCastle
			case H8:
				p.CastlingRights &^= BlackKingSideCastle
			}
		}
	}

	// Step 5: place the piece on to-square (promoted kind if promotion);
	// castling also moves the rook; en passant already cleared the
	// captured pawn's square above.
	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.setPiece(NewPiece(promoPt, us), to)
		p.Hash ^= zobristPiece[us][promoPt][to]
		pushDirty(piece, from, NoSquare)
		pushDirty(NewPiece(promoPt, us), NoSquare, to)
		if us == White {
			p.WhiteMaterial += PieceValue[promoPt] - PieceValue[Pawn]
		} else {
			p.BlackMaterial += PieceValue[promoPt] - PieceValue[Pawn]
		}
	} else {
		p.setPiece(piece, to)
		p.Hash ^= zobristPiece[us][pt][to]
		if pt == Pawn {
			p.PawnKey ^= zobristPiece[us][Pawn][to]
		}
		pushDirty(piece, from, to)
	}

	if isCastling {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom, rookTo = from+3, from+1
		} else {
			rookFrom, rookTo = from-4, from-1
		}
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
		pushDirty(NewPiece(Rook, us), rookFrom, rookTo)
	}

	undo.DirtyCount = dc

	// Step 6: update the mover's own castling rights.
	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if pt == Rook {
		switch from {
		case A1:
			p.CastlingRights &^= WhiteQueenSideCastle
		case H1:
			p.CastlingRights &^= WhiteKingSideCastle
		case A8:
			p.CastlingRights &^= BlackQueenSideCastle
		case H8:
			p.CastlingRights &^= BlackKingSideCastle
		}
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	// Step 7: king_positions are kept current by setPiece/movePiece.

	// Step 8: white_pieces/black_pieces are kept current incrementally by
	// setPiece/removePiece/movePiece; no bulk recompute needed.

	// Step 9: en-passant file: only set for a two-square pawn push with an
	// enemy pawn adjacent on the landing rank.
	p.EnPassant = NoSquare
	if pt == Pawn {
		diff := int(to) - int(from)
		if diff == 16 || diff == -16 {
			landing := Square((int(from) + int(to)) / 2)
			adjacent := pawnAttacks[us][landing] & p.Pieces[them][Pawn]
			if adjacent != 0 {
				p.EnPassant = landing
				p.Hash ^= zobristEnPassant[landing.File()]
			}
		}
	}

	// Step 10: flip turn.
	p.SideToMove = them
	p.Hash ^= zobristSideToMove

	// Step 11: half-move clock, ply counter, and repetition bookkeeping.
	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
		p.LastThreefoldReset = p.HalfMoves + 1
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.HalfMoves++
	if len(p.PositionHistory) <= p.HalfMoves {
		p.PositionHistory = append(p.PositionHistory, p.Hash)
	} else {
		p.PositionHistory[p.HalfMoves] = p.Hash
	}
	p.PositionHistory = p.PositionHistory[:p.HalfMoves+1]

	// Repetitions counts occurrences of the current hash in
	// position_history[last_threefold_reset .. half_moves], inclusive of
	// the position just reached — so a position seen three times total
	// (the original plus two repeats) reports Repetitions == 3.
	reps := 0
	for i := p.HalfMoves; i >= p.LastThreefoldReset; i -= 2 {
		if p.PositionHistory[i] == p.Hash {
			reps++
		}
	}
	p.Repetitions = reps

	p.UpdateCheckers()

	// Step 12/13: apply NNUE deltas and let the hook compute/store the
	// incremental evaluation for the new ply.
	if p.NNUE != nil {
		dirty := make([]DirtyPiece, dc)
		for i := 0; i < dc; i++ {
			dirty[i] = DirtyPiece{Piece: undo.DirtyPiece[i], From: undo.DirtyFrom[i], To: undo.DirtyTo[i]}
		}
		p.NNUE.Apply(dirty)
	}

	p.MoveStack = append(p.MoveStack, undo)
}

// Unmake undoes the most recent Make call.
func (p *Position) Unmake() {
	n := len(p.MoveStack)
	undo := p.MoveStack[n-1]
	p.MoveStack = p.MoveStack[:n-1]

	m := undo.Move
	from, to := m.From(), m.To()

	them := p.SideToMove
	us := them.Other()

	p.SideToMove = us
	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.WhiteMaterial = undo.WhiteMaterial
	p.BlackMaterial = undo.BlackMaterial
	p.KingSquare = undo.KingSquare
	p.LastThreefoldReset = undo.LastThreefoldReset
	p.Repetitions = undo.Repetitions

	if us == Black {
		p.FullMoveNumber--
	}

	p.HalfMoves--
	p.PositionHistory = p.PositionHistory[:p.HalfMoves+1]

	if m.IsPromotion() {
		p.removePiece(to)
		p.setPiece(NewPiece(Pawn, us), from)
	} else {
		p.movePiece(to, from)
	}

	isCastling := undo.MovedPiece.Type() == King &&
		(int(to.Col())-int(from.Col()) == 2 || int(to.Col())-int(from.Col()) == -2)
	if isCastling {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom, rookTo = from+3, from+1
		} else {
			rookFrom, rookTo = from-4, from-1
		}
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		p.setPiece(undo.CapturedPiece, undo.CapturedSquare)
	}

	p.UpdateCheckers()

	if p.NNUE != nil {
		p.NNUE.Pop()
	}
}
