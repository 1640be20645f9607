package sfnnue

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildTestWeights(input, mid, output int) *Weights {
	w := &Weights{
		Input:          input,
		Mid:            mid,
		Output:         output,
		FeatureWeights: make([]int16, input*mid),
		FeatureBias:    make([]int16, mid),
		OutputWeights:  make([]int8, output*mid*2),
		OutputBias:     make([]int32, output),
	}
	for i := range w.FeatureWeights {
		w.FeatureWeights[i] = int16((i*7)%200 - 100)
	}
	for i := range w.FeatureBias {
		w.FeatureBias[i] = int16(i % 50)
	}
	for i := range w.OutputWeights {
		w.OutputWeights[i] = int8((i*3)%200 - 100)
	}
	for i := range w.OutputBias {
		w.OutputBias[i] = int32(i * 10)
	}
	return w
}

func TestLoadWeightsRoundTrip(t *testing.T) {
	w := buildTestWeights(64, 16, OutputBuckets)

	var buf bytes.Buffer
	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], uint32(w.Input))
	binary.LittleEndian.PutUint32(header[4:8], uint32(w.Mid))
	binary.LittleEndian.PutUint32(header[8:12], uint32(w.Output))
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, w.FeatureWeights)
	binary.Write(&buf, binary.LittleEndian, w.FeatureBias)
	binary.Write(&buf, binary.LittleEndian, w.OutputWeights)
	binary.Write(&buf, binary.LittleEndian, w.OutputBias)

	got, err := LoadWeights(&buf)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if got.Input != w.Input || got.Mid != w.Mid || got.Output != w.Output {
		t.Fatalf("dimension mismatch: got %+v want input=%d mid=%d output=%d", got, w.Input, w.Mid, w.Output)
	}
	for i := range w.FeatureWeights {
		if got.FeatureWeights[i] != w.FeatureWeights[i] {
			t.Fatalf("feature weight %d mismatch: got %d want %d", i, got.FeatureWeights[i], w.FeatureWeights[i])
		}
	}
}

func TestLoadWeightsRejectsBadHeader(t *testing.T) {
	buf := bytes.NewReader(make([]byte, 12)) // all-zero dims
	if _, err := LoadWeights(buf); err == nil {
		t.Fatal("expected error for zero-dimension header")
	}
}

func TestLoadWeightsPanicsOnTruncatedHeader(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected LoadWeights to panic on a truncated header")
		}
	}()
	buf := bytes.NewReader(make([]byte, 4)) // shorter than the 12-byte header
	LoadWeights(buf)
}

func TestLoadWeightsPanicsOnTruncatedBody(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected LoadWeights to panic on a body shorter than its own header declares")
		}
	}()

	var buf bytes.Buffer
	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], 64)
	binary.LittleEndian.PutUint32(header[4:8], 16)
	binary.LittleEndian.PutUint32(header[8:12], OutputBuckets)
	buf.Write(header)
	// Feature weights truncated: header promises 64*16 int16s, only write one.
	binary.Write(&buf, binary.LittleEndian, int16(0))

	LoadWeights(&buf)
}

// TestIncrementalUpdateMatchesFullRefresh checks that applying a delta list
// to an accumulator produces the same result as recomputing it from the
// resulting feature set.
func TestIncrementalUpdateMatchesFullRefresh(t *testing.T) {
	const mid = 32
	net := NewNetwork(buildTestWeights(1000, mid, OutputBuckets))

	initial := []int{10, 50, 100, 200, 500}
	prev := make([]int16, mid)
	net.ComputeAccumulator(initial, prev)

	removed := []int{50}
	added := []int{300}

	incremental := make([]int16, mid)
	copy(incremental, prev)
	net.UpdateAccumulator(removed, added, incremental)

	full := make([]int16, mid)
	net.ComputeAccumulator([]int{10, 100, 200, 300, 500}, full)

	for i := range full {
		if incremental[i] != full[i] {
			t.Fatalf("mismatch at %d: incremental=%d full=%d", i, incremental[i], full[i])
		}
	}
}

func TestAccumulatorStackPushPop(t *testing.T) {
	stack := NewAccumulatorStack(16)

	if stack.size != 1 {
		t.Fatalf("initial size should be 1, got %d", stack.size)
	}

	stack.Push()
	if stack.size != 2 {
		t.Fatalf("after push, size should be 2, got %d", stack.size)
	}
	if stack.Previous() == nil {
		t.Fatal("Previous should not be nil after push")
	}

	stack.Pop()
	if stack.size != 1 {
		t.Fatalf("after pop, size should be 1, got %d", stack.size)
	}
	if stack.Previous() != nil {
		t.Fatal("Previous should be nil at the bottom of the stack")
	}
}

func TestPropagateBucketSelection(t *testing.T) {
	cases := []struct {
		pieces int
		want   int
	}{
		{1, 0}, {4, 0}, {5, 1}, {32, 7}, {100, 7}, {0, 0}, {-1, 0},
	}
	for _, c := range cases {
		if got := outputBucket(c.pieces); got != c.want {
			t.Errorf("outputBucket(%d) = %d, want %d", c.pieces, got, c.want)
		}
	}
}

func TestSquaredClippedReLUClamps(t *testing.T) {
	in := []int16{-10, 0, 128, 255, 400}
	out := make([]uint8, len(in))
	squaredClippedReLU(in, out)
	want := []uint8{0, 0, uint8((128 * 128) >> 8), uint8((255 * 255) >> 8), uint8((255 * 255) >> 8)}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("squaredClippedReLU[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
