package board

import "fmt"

// Square is a board index 0..63. sq = row*8 + col; row 0 is the rank
// furthest from White (the 8th rank), row 7 is White's home rank (the
// 1st rank); col 0 is the a-file.
type Square int8

// NoSquare marks the absence of a square (e.g. no en-passant target).
const NoSquare Square = -1

// NewSquare builds a Square from a zero-based row and column.
func NewSquare(row, col int) Square {
	return Square(row*8 + col)
}

// Row returns the array row (0 = 8th rank).
func (s Square) Row() int { return int(s) / 8 }

// Col returns the file (0 = a-file).
func (s Square) Col() int { return int(s) % 8 }

// File is an alias for Col, kept for callers that read in chess terms.
func (s Square) File() int { return s.Col() }

// Rank returns the chess rank as a zero-based index, 0 = rank 1.
func (s Square) Rank() int { return 7 - s.Row() }

// Mirror flips a square vertically (used for NNUE's black perspective
// and for Polyglot's en-passant symmetry checks).
func (s Square) Mirror() Square {
	return NewSquare(7-s.Row(), s.Col())
}

// String renders algebraic notation, e.g. "e4".
func (s Square) String() string {
	if s == NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+byte(s.Col()), '1'+byte(s.Rank()))
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(str string) (Square, error) {
	if str == "-" {
		return NoSquare, nil
	}
	if len(str) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", str)
	}
	file := str[0]
	rankCh := str[1]
	if file < 'a' || file > 'h' || rankCh < '1' || rankCh > '8' {
		return NoSquare, fmt.Errorf("invalid square: %q", str)
	}
	col := int(file - 'a')
	rank := int(rankCh - '1')
	return NewSquare(7-rank, col), nil
}

// Named squares used by castling and en-passant logic.
const (
	A8 Square = iota
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A1
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)
