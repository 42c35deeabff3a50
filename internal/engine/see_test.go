package engine

import (
	"testing"

	"github.com/kestrelchess/core/internal/board"
	"github.com/stretchr/testify/require"
)

func TestSEEGEWinningCapture(t *testing.T) {
	// White rook takes a defenseless pawn on e5.
	pos, err := board.ParseFEN("4k3/8/8/4p3/8/8/4R3/4K3 w - - 0 1")
	require.NoError(t, err)

	moves := board.GenerateLegalMoves(pos, board.Tactic)
	var m board.Move
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).To() == board.E5 {
			m = moves.Get(i)
		}
	}
	require.NotEqual(t, board.NoMove, m)
	require.True(t, SEEGE(pos, m, 0))
}

func TestSEEGELosingCapture(t *testing.T) {
	// White queen takes a pawn defended by a rook: loses the queen for a pawn.
	pos, err := board.ParseFEN("4k3/8/4r3/4p3/8/8/8/4QK2 w - - 0 1")
	require.NoError(t, err)

	moves := board.GenerateLegalMoves(pos, board.Tactic)
	var m board.Move
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).To() == board.E5 {
			m = moves.Get(i)
		}
	}
	require.NotEqual(t, board.NoMove, m)
	require.False(t, SEEGE(pos, m, 0))
	require.True(t, SEEGE(pos, m, -850))
}
