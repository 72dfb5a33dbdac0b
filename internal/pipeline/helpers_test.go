package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/dataloader/internal/tensor"
)

// scaleOp multiplies float32 batches by factor. With scratch set it writes
// into its destination buffer and returns it; otherwise it works in place.
type scaleOp struct {
	factor  float32
	scratch bool
}

func (o scaleOp) Name() string { return "scale" }

func (o scaleOp) DeclareStateAndMemory(prev State) (State, *AllocationQuery, error) {
	if !o.scratch {
		return prev, nil, nil
	}
	return prev, &AllocationQuery{Shape: prev.Shape.Clone(), DType: prev.DType}, nil
}

func (o scaleOp) GenerateCode() Transform {
	return func(state State, batch, dst *tensor.RawTensor) (*tensor.RawTensor, error) {
		if err := CheckSamples(o.Name(), "batch", batch, state.Shape, state.DType); err != nil {
			return nil, err
		}
		out := batch
		if o.scratch {
			out = dst
		}
		src, res := batch.AsFloat32(), out.AsFloat32()
		for i := range res {
			res[i] = src[i] * o.factor
		}
		return out, nil
	}
}

// gatedOp only plans on JIT, per-batch pipelines.
type gatedOp struct{}

func (gatedOp) DeclareStateAndMemory(prev State) (State, *AllocationQuery, error) {
	if err := RequireBatchJIT("gated", prev); err != nil {
		return State{}, nil, err
	}
	return prev, nil, nil
}

func (gatedOp) GenerateCode() Transform {
	return func(_ State, batch, _ *tensor.RawTensor) (*tensor.RawTensor, error) {
		return batch, nil
	}
}

// seedRecorder remembers the seed every batch was run with.
type seedRecorder struct {
	mu    *sync.Mutex
	seeds map[int]uint64 // first element of the batch -> seed
}

func newSeedRecorder() seedRecorder {
	return seedRecorder{mu: &sync.Mutex{}, seeds: make(map[int]uint64)}
}

func (r seedRecorder) DeclareStateAndMemory(prev State) (State, *AllocationQuery, error) {
	return prev, nil, nil
}

func (r seedRecorder) GenerateCode() Transform {
	return func(state State, batch, _ *tensor.RawTensor) (*tensor.RawTensor, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.seeds[int(batch.Float32At(0))] = state.RandomSeed
		return batch, nil
	}
}

func jitBatches(shape tensor.Shape, dtype tensor.DataType) State {
	return State{Stage: Batches, JITMode: true, Shape: shape, DType: dtype}
}

func floatBatch(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromFloat32(shape, values)
	require.NoError(t, err)
	return raw
}
