package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   to square (0-63)
// bits 6-11:  from square (0-63)
// bits 12-15: promotion piece type (0 = no promotion)
//
// Castling and en passant are not flagged in the encoding; callers detect
// them contextually (a king moving two files is castling, a pawn moving
// to the empty en-passant square is an en-passant capture).
type Move uint16

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a move, promo is PieceType's zero value (Pawn, which
// can never legally be a promotion target) when there is no promotion.
func NewMove(from, to Square, promo PieceType) Move {
	return Move(to) | Move(from)<<6 | Move(promo)<<12
}

// NewNormalMove creates a non-promoting move.
func NewNormalMove(from, to Square) Move {
	return NewMove(from, to, Pawn)
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return NewMove(from, to, promo)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m & 0x3F)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((m >> 6) & 0x3F)
}

// Promotion returns the promotion piece type, or Pawn if there is none.
func (m Move) Promotion() PieceType {
	return PieceType((m >> 12) & 0xF)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion() != Pawn
}

// IsCastling returns true if this move is a king move of two files.
func (m Move) IsCastling(pos *Position) bool {
	from := m.From()
	piece := pos.PieceAt(from)
	if piece == NoPiece || piece.Type() != King {
		return false
	}
	diff := int(m.To().Col()) - int(from.Col())
	return diff == 2 || diff == -2
}

// IsEnPassant returns true if this move is an en-passant capture.
func (m Move) IsEnPassant(pos *Position) bool {
	from := m.From()
	piece := pos.PieceAt(from)
	if piece == NoPiece || piece.Type() != Pawn {
		return false
	}
	return m.To() == pos.EnPassant && pos.IsEmpty(m.To())
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant(pos) {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// Exchange computes the move-ordering priority value used to bucket moves
// into GOOD_TACTICS/QUIETS/BAD_TACTICS: capture value minus mover value
// plus one for captures, a promotion bonus for promotions, zero for quiet
// moves.
func Exchange(pos *Position, m Move) int32 {
	var value int32
	if m.IsEnPassant(pos) {
		value = int32(PieceValue[Pawn]) - int32(pos.PieceAt(m.From()).Value()) + 1
	} else if captured := pos.PieceAt(m.To()); captured != NoPiece {
		value = int32(captured.Value()) - int32(pos.PieceAt(m.From()).Value()) + 1
	}
	if m.IsPromotion() {
		value += int32(PieceValue[m.Promotion()]) - int32(PieceValue[Pawn])
	}
	return value
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}

	return s
}

// ParseMove parses a UCI format move string.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewMove(from, to, promo), nil
	}

	return NewNormalMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	Move               Move
	MovedPiece         Piece
	CapturedPiece      Piece
	CapturedSquare     Square
	CastlingRights     CastlingRights
	EnPassant          Square
	HalfMoveClock      int
	LastThreefoldReset int
	Repetitions        int
	Hash               uint64
	PawnKey            uint64
	WhiteMaterial      int
	BlackMaterial      int
	KingSquare         [2]Square
	DirtyFrom          [3]Square
	DirtyTo            [3]Square
	DirtyPiece         [3]Piece
	DirtyCount         int
}
