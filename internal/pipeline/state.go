package pipeline

import (
	"github.com/born-ml/dataloader/internal/tensor"
)

// State describes the data flowing between two stages.
//
// State is a value: operations receive a copy and return the copy the next
// stage should see. Shape is the per-sample shape, without the batch axis.
type State struct {
	Stage      Stage
	JITMode    bool
	Shape      tensor.Shape
	DType      tensor.DataType
	RandomSeed uint64
}

// WithSeed returns a copy of s carrying the given per-batch seed.
func (s State) WithSeed(seed uint64) State {
	s.RandomSeed = seed
	return s
}

// WithSample returns a copy of s describing samples of the given shape and dtype.
func (s State) WithSample(shape tensor.Shape, dtype tensor.DataType) State {
	s.Shape = shape.Clone()
	s.DType = dtype
	return s
}

// AllocationQuery asks the driver for a scratch buffer.
//
// Shape is per sample; the driver reserves Shape.WithBatch(batchSize).
// The buffer belongs to the requesting stage for the lifetime of the
// pipeline and is never handed to another stage.
type AllocationQuery struct {
	Shape tensor.Shape
	DType tensor.DataType
}

// BatchShape returns the shape of the buffer for n samples.
func (q AllocationQuery) BatchShape(n int) tensor.Shape {
	return q.Shape.WithBatch(n)
}

// ByteSize returns the number of bytes needed for n samples.
func (q AllocationQuery) ByteSize(n int) int {
	return n * q.Shape.NumElements() * q.DType.Size()
}
