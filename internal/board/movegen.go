package board

// MoveFilter selects which pseudo-legal moves a generator produces,
// matching the move picker's three-stage GOOD_TACTICS/QUIETS/BAD_TACTICS
// split: All gets everything, Tactic gets captures/promotions/en-passant,
// Quiet gets the rest.
type MoveFilter int

const (
	All MoveFilter = iota
	Tactic
	Quiet
)

// GenerateLegalMoves generates all legal moves for the position matching filter.
func GenerateLegalMoves(p *Position, filter MoveFilter) *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml, filter)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves matching filter
// (may leave the mover's king in check).
func GeneratePseudoLegalMoves(p *Position, filter MoveFilter) *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml, filter)
	return ml
}

// generateAllMoves generates all pseudo-legal moves for the requested filter.
func (p *Position) generateAllMoves(ml *MoveList, filter MoveFilter) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	p.generatePawnMoves(ml, us, enemies, occupied, filter)

	if filter != Tactic {
		knights := p.Pieces[us][Knight]
		for knights != 0 {
			from := knights.PopLSB()
			attacks := KnightAttacks(from) & ^p.Occupied[us] & ^enemies
			for attacks != 0 {
				to := attacks.PopLSB()
				ml.Add(NewNormalMove(from, to))
			}
		}
	}
	if filter != Quiet {
		knights := p.Pieces[us][Knight]
		for knights != 0 {
			from := knights.PopLSB()
			attacks := KnightAttacks(from) & enemies
			for attacks != 0 {
				to := attacks.PopLSB()
				ml.Add(NewNormalMove(from, to))
			}
		}
	}

	p.generateSliderMoves(ml, us, Bishop, enemies, occupied, filter)
	p.generateSliderMoves(ml, us, Rook, enemies, occupied, filter)
	p.generateSliderMoves(ml, us, Queen, enemies, occupied, filter)

	p.generateKingMoves(ml, us, enemies, filter)

	if filter != Tactic {
		p.generateCastlingMoves(ml, us)
	}
}

func (p *Position) generateSliderMoves(ml *MoveList, us Color, pt PieceType, enemies, occupied Bitboard, filter MoveFilter) {
	pieces := p.Pieces[us][pt]
	for pieces != 0 {
		from := pieces.PopLSB()
		var attacks Bitboard
		switch pt {
		case Bishop:
			attacks = BishopAttacks(from, occupied)
		case Rook:
			attacks = RookAttacks(from, occupied)
		case Queen:
			attacks = QueenAttacks(from, occupied)
		}
		attacks &= ^p.Occupied[us]

		if filter != Tactic {
			quiet := attacks & ^enemies
			for quiet != 0 {
				to := quiet.PopLSB()
				ml.Add(NewNormalMove(from, to))
			}
		}
		if filter != Quiet {
			captures := attacks & enemies
			for captures != 0 {
				to := captures.PopLSB()
				ml.Add(NewNormalMove(from, to))
			}
		}
	}
}

// generatePawnMoves generates all pawn moves matching filter.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard, filter MoveFilter) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = -8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = 8
	}

	if filter != Tactic {
		nonPromo := push1 & ^promotionRank
		for nonPromo != 0 {
			to := nonPromo.PopLSB()
			from := Square(int(to) - pushDir)
			ml.Add(NewNormalMove(from, to))
		}

		for push2 != 0 {
			to := push2.PopLSB()
			from := Square(int(to) - 2*pushDir)
			ml.Add(NewNormalMove(from, to))
		}
	}

	if filter != Quiet {
		nonPromoL := attackL & ^promotionRank
		for nonPromoL != 0 {
			to := nonPromoL.PopLSB()
			from := Square(int(to) - pushDir + 1)
			ml.Add(NewNormalMove(from, to))
		}

		nonPromoR := attackR & ^promotionRank
		for nonPromoR != 0 {
			to := nonPromoR.PopLSB()
			from := Square(int(to) - pushDir - 1)
			ml.Add(NewNormalMove(from, to))
		}
	}

	// Promotions are tactical (they always count towards Tactic generation).
	if filter != Quiet {
		promoPush := push1 & promotionRank
		for promoPush != 0 {
			to := promoPush.PopLSB()
			from := Square(int(to) - pushDir)
			addPromotions(ml, from, to)
		}

		promoL := attackL & promotionRank
		for promoL != 0 {
			to := promoL.PopLSB()
			from := Square(int(to) - pushDir + 1)
			addPromotions(ml, from, to)
		}

		promoR := attackR & promotionRank
		for promoR != 0 {
			to := promoR.PopLSB()
			from := Square(int(to) - pushDir - 1)
			addPromotions(ml, from, to)
		}
	}

	if filter != Quiet && p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewNormalMove(from, p.EnPassant))
		}
	}
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateKingMoves generates non-castling king moves matching filter.
func (p *Position) generateKingMoves(ml *MoveList, us Color, enemies Bitboard, filter MoveFilter) {
	from := p.KingSquare[us]
	attacks := KingAttacks(from) & ^p.Occupied[us]

	if filter != Tactic {
		quiet := attacks & ^enemies
		for quiet != 0 {
			to := quiet.PopLSB()
			ml.Add(NewNormalMove(from, to))
		}
	}
	if filter != Quiet {
		captures := attacks & enemies
		for captures != 0 {
			to := captures.PopLSB()
			ml.Add(NewNormalMove(from, to))
		}
	}
}

// generateCastlingMoves generates castling moves (always quiet).
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			if p.AllOccupied&(SquareBB(F1)|SquareBB(G1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
					ml.Add(NewNormalMove(E1, G1))
				}
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			if p.AllOccupied&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
					ml.Add(NewNormalMove(E1, C1))
				}
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			if p.AllOccupied&(SquareBB(F8)|SquareBB(G8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
					ml.Add(NewNormalMove(E8, G8))
				}
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			if p.AllOccupied&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
					ml.Add(NewNormalMove(E8, C8))
				}
			}
		}
	}
}

// filterLegalMoves filters out illegal moves (those that leave king in check).
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			result.Add(m)
		}
	}

	return result
}

// IsLegal returns true if the move is legal (doesn't leave its own king in
// check). Uses VBoard, an allocation-free move simulation, instead of a
// full Make/Unmake so legality checks never touch the Zobrist hash, the
// board array, or the NNUE hook.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling(p) {
			return true // Already validated during generation.
		}
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	v := NewVBoard(p)
	v.ApplyMove(m, us)
	return !v.IsKingAttacked(v.KingSquare[us], them)
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := GeneratePseudoLegalMoves(p, All)
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw by stalemate, the 50-move
// rule, insufficient material, or threefold repetition.
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	if p.Repetitions >= 3 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}
	if wKnights == 0 && bKnights == 0 && wBishops == 1 && bBishops == 1 {
		wSq := p.Pieces[White][Bishop].LSB()
		bSq := p.Pieces[Black][Bishop].LSB()
		wDark := (wSq.Row()+wSq.Col())%2 == 1
		bDark := (bSq.Row()+bSq.Col())%2 == 1
		if wDark == bDark {
			return true
		}
	}

	return false
}
