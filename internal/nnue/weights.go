package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LoadWeights loads network weights from a binary file: the raw
// concatenation of hidden_weights[768][H] int16, hidden_biases[H] int16,
// output_weights_stm[B][H] int16, output_weights_opp[B][H] int16,
// output_bias[B] int16, little-endian, no header.
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("nnue: failed to open weights file: %w", err)
	}
	defer f.Close()
	return n.LoadWeightsFromReader(f)
}

// LoadWeightsFromReader loads network weights from an io.Reader in the
// exact order the on-disk format mandates.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	for i := 0; i < NumFeatures; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.HiddenWeights[i]); err != nil {
			return fmt.Errorf("nnue: failed to read hidden weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.HiddenBias); err != nil {
		return fmt.Errorf("nnue: failed to read hidden biases: %w", err)
	}
	for b := 0; b < NumBuckets; b++ {
		if err := binary.Read(r, binary.LittleEndian, &n.OutputWeightsSTM[b]); err != nil {
			return fmt.Errorf("nnue: failed to read stm output weights at bucket %d: %w", b, err)
		}
	}
	for b := 0; b < NumBuckets; b++ {
		if err := binary.Read(r, binary.LittleEndian, &n.OutputWeightsOpp[b]); err != nil {
			return fmt.Errorf("nnue: failed to read opp output weights at bucket %d: %w", b, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: failed to read output bias: %w", err)
	}
	return nil
}

// SaveWeights writes the network in the same raw layout LoadWeights reads.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("nnue: failed to create weights file: %w", err)
	}
	defer f.Close()

	for i := 0; i < NumFeatures; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.HiddenWeights[i]); err != nil {
			return fmt.Errorf("nnue: failed to write hidden weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.HiddenBias); err != nil {
		return fmt.Errorf("nnue: failed to write hidden biases: %w", err)
	}
	for b := 0; b < NumBuckets; b++ {
		if err := binary.Write(f, binary.LittleEndian, &n.OutputWeightsSTM[b]); err != nil {
			return fmt.Errorf("nnue: failed to write stm output weights at bucket %d: %w", b, err)
		}
	}
	for b := 0; b < NumBuckets; b++ {
		if err := binary.Write(f, binary.LittleEndian, &n.OutputWeightsOpp[b]); err != nil {
			return fmt.Errorf("nnue: failed to write opp output weights at bucket %d: %w", b, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: failed to write output bias: %w", err)
	}
	return nil
}
