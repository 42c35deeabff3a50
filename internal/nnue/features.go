package nnue

import "github.com/kestrelchess/core/internal/board"

// FeatureIndex computes the input index for a piece on a square from a
// given perspective. White perspective: s*12 + (p-1) where p is the piece
// code (1..12). Black perspective: the square is mirrored vertically and
// the piece's color is flipped (kind+6 becomes kind-6 and vice versa).
func FeatureIndex(perspective board.Color, sq board.Square, piece board.Piece) int {
	if perspective == board.Black {
		sq = sq.Mirror()
		if piece <= 6 {
			piece += 6
		} else {
			piece -= 6
		}
	}
	return int(sq)*12 + int(piece-1)
}
