package nnue

import "github.com/kestrelchess/core/internal/board"

// Network holds the NNUE weights: one hidden layer shared by both
// perspectives, and a bucketed output stage selected by occupancy.
type Network struct {
	HiddenWeights [NumFeatures][HiddenSize]int16
	HiddenBias    [HiddenSize]int16

	OutputWeightsSTM [NumBuckets][HiddenSize]int16
	OutputWeightsOpp [NumBuckets][HiddenSize]int16
	OutputBias       [NumBuckets]int16
}

// NewNetwork creates a network with zero weights; callers must LoadWeights
// or InitRandom before use.
func NewNetwork() *Network {
	return &Network{}
}

// bucketFor selects the output bucket from the total occupied square count.
func bucketFor(occupancy int) int {
	b := (occupancy - 2) * NumBuckets / 32
	if b < 0 {
		b = 0
	}
	if b >= NumBuckets {
		b = NumBuckets - 1
	}
	return b
}

// Forward computes the network output given an accumulator and the side to
// move, returning a centipawn-like score from that side's perspective.
func (n *Network) Forward(acc *Accumulator, sideToMove board.Color, occupancy int) int {
	bucket := bucketFor(occupancy)

	var stmAcc, oppAcc *[HiddenSize]int16
	if sideToMove == board.White {
		stmAcc, oppAcc = &acc.White, &acc.Black
	} else {
		stmAcc, oppAcc = &acc.Black, &acc.White
	}

	sum := int64(n.OutputBias[bucket])
	wSTM := &n.OutputWeightsSTM[bucket]
	wOpp := &n.OutputWeightsOpp[bucket]
	for i := 0; i < HiddenSize; i++ {
		sum += int64(ClampedReLU(stmAcc[i])) * int64(wSTM[i])
		sum += int64(ClampedReLU(oppAcc[i])) * int64(wOpp[i])
	}

	return int(sum * Scale / (QA * QB))
}

// InitRandom initializes weights with small random values (for testing only).
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state >> 48) & 0xFF) - 128
	}

	for i := 0; i < NumFeatures; i++ {
		for j := 0; j < HiddenSize; j++ {
			n.HiddenWeights[i][j] = next() >> 5
		}
	}
	for j := 0; j < HiddenSize; j++ {
		n.HiddenBias[j] = next() >> 3
	}
	for b := 0; b < NumBuckets; b++ {
		for j := 0; j < HiddenSize; j++ {
			n.OutputWeightsSTM[b][j] = next() >> 6
			n.OutputWeightsOpp[b][j] = next() >> 6
		}
		n.OutputBias[b] = next()
	}
}
