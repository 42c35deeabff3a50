package engine

import (
	"testing"

	"github.com/kestrelchess/core/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionStoreAndProbe(t *testing.T) {
	tt := NewTranspositionTable(1)
	m := board.NewNormalMove(board.E2, board.E4)

	tt.Store(12345, 6, 150, TTExact, m)

	entry, ok := tt.Probe(12345)
	require.True(t, ok)
	assert.Equal(t, int16(150), entry.Score)
	assert.Equal(t, m, entry.BestMove)
	assert.Equal(t, TTExact, entry.Flag)
}

func TestTranspositionShallowerExactOverridesDeeperBound(t *testing.T) {
	tt := NewTranspositionTable(1)
	m1 := board.NewNormalMove(board.E2, board.E4)
	m2 := board.NewNormalMove(board.D2, board.D4)

	tt.Store(999, 8, 50, TTLowerBound, m1)
	tt.Store(999, 4, 75, TTExact, m2)

	entry, ok := tt.Probe(999)
	require.True(t, ok)
	assert.Equal(t, TTExact, entry.Flag)
	assert.Equal(t, m2, entry.BestMove)
	assert.Equal(t, int8(4), entry.Depth)
}

func TestTranspositionDeeperBoundNotOverriddenByShallowerBound(t *testing.T) {
	tt := NewTranspositionTable(1)
	m1 := board.NewNormalMove(board.E2, board.E4)
	m2 := board.NewNormalMove(board.D2, board.D4)

	tt.Store(555, 8, 50, TTLowerBound, m1)
	tt.Store(555, 4, 75, TTUpperBound, m2)

	entry, ok := tt.Probe(555)
	require.True(t, ok)
	assert.Equal(t, m1, entry.BestMove)
	assert.Equal(t, int8(8), entry.Depth)
}

func TestAdjustScoreRoundTripsThroughTT(t *testing.T) {
	mateScore := MateScore - 3
	stored := AdjustScoreToTT(mateScore, 5)
	restored := AdjustScoreFromTT(stored, 5)
	assert.Equal(t, mateScore, restored)
}
