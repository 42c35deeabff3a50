package engine

import (
	"testing"
	"time"

	"github.com/kestrelchess/core/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFindsMateInOne(t *testing.T) {
	// Back-rank mate: Ra8# is mate in one for white.
	pos, err := board.ParseFEN("7k/5ppp/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	tt := NewTranspositionTable(4)
	s := NewSearcher(tt)
	s.Prepare(pos, time.Now().Add(2*time.Second))

	score := s.SearchAspiration(4, 0)
	require.False(t, isTimeout(score))

	best := s.BestMove()
	require.NotEqual(t, board.NoMove, best)
	assert.Equal(t, board.A1, best.From())
	assert.Equal(t, board.A8, best.To())
	assert.Greater(t, score, MateScore-100)
}

func TestSearchAvoidsStalemateWhenWinning(t *testing.T) {
	// White to move, up a queen; must not blunder into stalemate.
	pos, err := board.ParseFEN("7k/8/6Q1/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	tt := NewTranspositionTable(4)
	s := NewSearcher(tt)
	s.Prepare(pos, time.Now().Add(time.Second))

	score := s.SearchAspiration(3, 0)
	require.False(t, isTimeout(score))

	best := s.BestMove()
	require.NotEqual(t, board.NoMove, best)

	pos.Make(best)
	assert.False(t, pos.IsStalemate())
}

func TestNegamaxReturnsDrawScoreOnRepetition(t *testing.T) {
	pos := board.NewPosition()
	for i := 0; i < 2; i++ {
		pos.Make(board.NewNormalMove(board.G1, board.F3))
		pos.Make(board.NewNormalMove(board.G8, board.F6))
		pos.Make(board.NewNormalMove(board.F3, board.G1))
		pos.Make(board.NewNormalMove(board.F6, board.G8))
	}

	tt := NewTranspositionTable(4)
	s := NewSearcher(tt)
	s.Prepare(pos, time.Now().Add(time.Second))

	score := s.negamax(2, 1, -Infinity, Infinity)
	assert.Equal(t, 0, score)
}

func TestSearchAspirationConvergesOnStablePosition(t *testing.T) {
	pos := board.NewPosition()
	tt := NewTranspositionTable(4)
	s := NewSearcher(tt)
	s.Prepare(pos, time.Now().Add(2*time.Second))

	prevScore := 0
	for depth := 1; depth <= 4; depth++ {
		score := s.SearchAspiration(depth, prevScore)
		require.False(t, isTimeout(score))
		prevScore = score
	}

	assert.NotEqual(t, board.NoMove, s.BestMove())
}
