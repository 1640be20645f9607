// NNUE network loading and evaluation.
// Adapted from Stockfish src/nnue/network.h and .cpp for a single-network,
// flat wire format rather than Stockfish's compressed big/small format.

package sfnnue

import (
	"fmt"
	"io"
	"math/rand"
	"os"
)

// OutputBuckets is the number of output buckets in the i8 output layer,
// selected at evaluation time by piece count.
const OutputBuckets = 8

// Weights holds one network's learned parameters, read from the wire
// format: a 12-byte header (Input, Mid, Output as little-endian u32), then
// i16 feature weights [Input][Mid], i16 feature bias [Mid], i8 output
// weights [Output][Mid*2], i32 output bias [Output]. No padding.
type Weights struct {
	Input  int
	Mid    int
	Output int

	FeatureWeights []int16 // [Input][Mid], row-major
	FeatureBias    []int16 // [Mid]
	OutputWeights  []int8  // [Output][Mid*2], row-major
	OutputBias     []int32 // [Output]
}

// LoadWeights reads a network from its wire format. A file shorter than its
// own header declares (header truncated, or any of the four weight sections
// cut short) is a corrupt weights file rather than a recoverable I/O
// failure, so that case panics rather than returning an error — this is a
// deploy-time assertion, not something callers are expected to handle.
func LoadWeights(r io.Reader) (*Weights, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			panic(fmt.Errorf("corrupt NNUE weights: stream ended before filling the 12-byte header: %w", err))
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	input := int(leUint32(header[0:4]))
	mid := int(leUint32(header[4:8]))
	output := int(leUint32(header[8:12]))
	if input <= 0 || mid <= 0 || output <= 0 {
		return nil, fmt.Errorf("invalid network dimensions: input=%d mid=%d output=%d", input, mid, output)
	}

	w := &Weights{Input: input, Mid: mid, Output: output}

	w.FeatureWeights = make([]int16, input*mid)
	if err := ReadLittleEndianSlice(r, w.FeatureWeights); err != nil {
		return nil, fmt.Errorf("failed to read feature weights: %w", err)
	}

	w.FeatureBias = make([]int16, mid)
	if err := ReadLittleEndianSlice(r, w.FeatureBias); err != nil {
		return nil, fmt.Errorf("failed to read feature bias: %w", err)
	}

	w.OutputWeights = make([]int8, output*mid*2)
	if err := ReadLittleEndianSlice(r, w.OutputWeights); err != nil {
		return nil, fmt.Errorf("failed to read output weights: %w", err)
	}

	w.OutputBias = make([]int32, output)
	if err := ReadLittleEndianSlice(r, w.OutputBias); err != nil {
		return nil, fmt.Errorf("failed to read output bias: %w", err)
	}

	return w, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// LoadWeightsFile opens filename and loads a network from it.
func LoadWeightsFile(filename string) (*Weights, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open network file: %w", err)
	}
	defer f.Close()
	return LoadWeights(f)
}

// Network is a loaded NNUE evaluator.
type Network struct {
	Weights *Weights
}

// NewNetwork wraps already-loaded weights.
func NewNetwork(w *Weights) *Network {
	return &Network{Weights: w}
}

// Load loads a network from filename.
func Load(filename string) (*Network, error) {
	w, err := LoadWeightsFile(filename)
	if err != nil {
		return nil, err
	}
	return NewNetwork(w), nil
}

// NewRandomWeights builds a freshly initialized, untrained network of the
// given shape: small deterministic pseudo-random weights from a seeded
// generator, in the same distribution a network destined for gradient
// training would start from. Used to give an engine a network to evaluate
// with before any trained weights file exists for it; LoadWeightsFile
// replaces it once one does.
func NewRandomWeights(input, mid, output int, seed int64) *Weights {
	rng := rand.New(rand.NewSource(seed))

	w := &Weights{Input: input, Mid: mid, Output: output}

	w.FeatureWeights = make([]int16, input*mid)
	for i := range w.FeatureWeights {
		w.FeatureWeights[i] = int16(rng.Intn(201) - 100)
	}

	w.FeatureBias = make([]int16, mid)

	w.OutputWeights = make([]int8, output*mid*2)
	for i := range w.OutputWeights {
		w.OutputWeights[i] = int8(rng.Intn(41) - 20)
	}

	w.OutputBias = make([]int32, output)

	return w
}
