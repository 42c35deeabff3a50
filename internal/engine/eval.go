// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/kestrelchess/core/internal/board"
	"github.com/kestrelchess/core/internal/nnue"
)

// staticEvaluator is the package-wide NNUE evaluator backing Evaluate. It
// starts with random weights so the engine is usable before a weights file
// is loaded; InitNNUE swaps in the real network.
var staticEvaluator = mustRandomEvaluator()

func mustRandomEvaluator() *nnue.Evaluator {
	e, err := nnue.NewEvaluator("")
	if err != nil {
		panic(err)
	}
	return e
}

// InitNNUE loads the network weights used by Evaluate. Called once at
// startup; an empty path keeps the random-weight evaluator (tests only).
func InitNNUE(weightsFile string) error {
	if weightsFile == "" {
		return nil
	}
	e, err := nnue.NewEvaluator(weightsFile)
	if err != nil {
		return err
	}
	staticEvaluator = e
	return nil
}

// Evaluate returns the static evaluation of pos in centipawns from the side
// to move's perspective, via the NNUE network.
func Evaluate(pos *board.Position) int {
	return staticEvaluator.Evaluate(pos)
}

// EvaluateMaterial returns the raw material balance (white minus black) in
// centipawns, independent of NNUE; used for lazy move-ordering estimates
// where the full network evaluation would be wasted.
func EvaluateMaterial(pos *board.Position) int {
	return pos.Material()
}

// AttachNNUE wires the package's NNUE evaluator into pos as its NNUEHook, so
// Make/Unmake drive accumulator updates incrementally.
func AttachNNUE(pos *board.Position) {
	pos.NNUE = staticEvaluator
	staticEvaluator.Refresh(pos)
}
