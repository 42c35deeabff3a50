// Package nnue implements an incrementally-updated NNUE evaluator: a
// 768-input, single-hidden-layer network with a bucketed output stage,
// driven off board.Position's Make/Unmake via the NNUEHook interface.
package nnue

import "github.com/kestrelchess/core/internal/board"

// Network architecture constants.
const (
	NumFeatures = 768  // 64 squares * 12 piece codes
	HiddenSize  = 1024 // H
	NumBuckets  = 8    // B, selected by occupancy popcount

	QA    = 255 // input/accumulator quantization
	QB    = 64  // output weight quantization
	Scale = 400 // final centipawn scale
)

// ClampedReLU clamps an accumulator value to [0, QA] for quantized inference.
func ClampedReLU(x int16) int32 {
	if x < 0 {
		return 0
	}
	if int32(x) > QA {
		return QA
	}
	return int32(x)
}

// Evaluator is the main NNUE evaluator, implementing board.NNUEHook.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator creates a new NNUE evaluator. If weightsFile is empty, uses
// random weights for testing.
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()

	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}

	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(),
	}, nil
}

// Evaluate returns the NNUE evaluation for the position, in centipawns from
// the side to move's perspective.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(pos, e.net)
	}
	occupancy := pos.AllOccupied.PopCount()
	return e.net.Forward(acc, pos.SideToMove, occupancy)
}

// Push saves accumulator state (called by Position.Make before mutation).
func (e *Evaluator) Push() {
	e.stack.Push()
}

// Pop restores accumulator state (called by Position.Unmake).
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// Apply incrementally updates the current accumulator for a list of dirty
// pieces (called by Position.Make after mutating the board).
func (e *Evaluator) Apply(dirty []board.DirtyPiece) {
	e.stack.Current().ApplyDirty(dirty, e.net)
}

// Refresh forces a full recomputation of the current accumulator.
func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.Current().ComputeFull(pos, e.net)
}

// Reset resets the accumulator stack (for a new game).
func (e *Evaluator) Reset() {
	e.stack.Reset()
}
