package engine

import (
	"testing"

	"github.com/kestrelchess/core/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryGravitySaturates(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewNormalMove(board.E2, board.E4)

	for i := 0; i < 200; i++ {
		mo.UpdateHistory(m, 6, true)
	}

	score := mo.GetHistoryScore(m)
	assert.LessOrEqual(t, score, MaxHist)
	assert.Greater(t, score, MaxHist/2)
}

func TestHistoryGravityPenalizesBadMoves(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewNormalMove(board.D2, board.D4)

	mo.UpdateHistory(m, 6, true)
	before := mo.GetHistoryScore(m)
	mo.UpdateHistory(m, 6, false)
	after := mo.GetHistoryScore(m)

	assert.Less(t, after, before)
}

func TestMovePickerOrdersTacticsBeforeQuiets(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/4p3/8/8/4R3/4K3 w - - 0 1")
	require.NoError(t, err)

	mo := NewMoveOrderer()
	picker := NewMovePicker(pos, mo, 0, board.NoMove)

	move, stage, ok := picker.Next()
	require.True(t, ok)
	assert.Equal(t, StageGoodTactics, stage)
	assert.Equal(t, board.E5, move.To())
}

func TestMovePickerExcludesHashMove(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()

	ttMove := board.NewNormalMove(board.E2, board.E4)
	picker := NewMovePicker(pos, mo, 0, ttMove)

	for {
		move, _, ok := picker.Next()
		if !ok {
			break
		}
		assert.NotEqual(t, ttMove, move)
	}
}
