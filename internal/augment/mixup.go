package augment

import (
	"github.com/born-ml/dataloader/internal/parallel"
	"github.com/born-ml/dataloader/internal/pipeline"
	"github.com/born-ml/dataloader/internal/tensor"
)

// ImageMixup blends every sample of a batch with a random partner from the
// same batch, in place.
//
// Alpha is kept for configuration compatibility; weights are currently drawn
// uniformly from [0, 1) regardless of its value.
type ImageMixup struct {
	Alpha    float64
	Parallel parallel.Config
}

// NewImageMixup returns an ImageMixup that blends samples across all CPUs.
func NewImageMixup(alpha float64) ImageMixup {
	return ImageMixup{Alpha: alpha, Parallel: parallel.DefaultConfig()}
}

// Name implements pipeline.Named.
func (ImageMixup) Name() string {
	return "mixup"
}

// DeclareStateAndMemory requires a JIT, per-batch, floating-point pipeline
// and asks for one batch-sized scratch buffer shaped like the input.
func (m ImageMixup) DeclareStateAndMemory(prev pipeline.State) (pipeline.State, *pipeline.AllocationQuery, error) {
	if err := pipeline.RequireBatchJIT(m.Name(), prev); err != nil {
		return pipeline.State{}, nil, err
	}
	if prev.DType != tensor.Float32 && prev.DType != tensor.Float64 {
		return pipeline.State{}, nil, &pipeline.PreconditionError{
			Op:    m.Name(),
			Field: "dtype",
			Want:  "float32 or float64",
			Got:   prev.DType,
		}
	}

	return prev, &pipeline.AllocationQuery{Shape: prev.Shape.Clone(), DType: prev.DType}, nil
}

// GenerateCode returns the per-batch blend. The returned tensor is the
// input batch, modified in place; dst only holds scratch afterwards.
func (m ImageMixup) GenerateCode() pipeline.Transform {
	name := m.Name()
	cfg := m.Parallel

	return func(state pipeline.State, batch, dst *tensor.RawTensor) (*tensor.RawTensor, error) {
		if err := pipeline.CheckSamples(name, "batch", batch, state.Shape, state.DType); err != nil {
			return nil, err
		}
		if err := pipeline.CheckSamples(name, "dst", dst, state.Shape, state.DType); err != nil {
			return nil, err
		}
		n := batch.BatchSize()
		if dst.BatchSize() != n {
			return nil, &pipeline.MismatchError{Op: name, What: "dst", Want: batch.Shape(), Got: dst.Shape(), Kind: pipeline.ErrShapeMismatch}
		}

		mix := Draw(state.RandomSeed, n)
		per := state.Shape.NumElements()

		switch batch.DType() {
		case tensor.Float32:
			blend(batch.AsFloat32(), dst.AsFloat32(), mix, per, cfg)
		case tensor.Float64:
			blend(batch.AsFloat64(), dst.AsFloat64(), mix, per, cfg)
		default:
			return nil, &pipeline.MismatchError{Op: name, What: "batch", Want: "float32 or float64", Got: batch.DType(), Kind: pipeline.ErrDTypeMismatch}
		}

		return batch, nil
	}
}

// blend computes x[i] = lam[i]*x[i] + (1-lam[i])*x[perm[i]] for every sample
// i, using dst as the permuted copy. Samples paired with themselves are left
// untouched so they stay bit-identical.
func blend[T float32 | float64](x, dst []T, mix Mix, per int, cfg parallel.Config) {
	n := len(mix.Perm)

	// The gather must finish before any sample is overwritten.
	parallel.For(n, func(i int) {
		p := mix.Perm[i]
		copy(dst[i*per:(i+1)*per], x[p*per:(p+1)*per])
	}, cfg)

	parallel.For(n, func(i int) {
		if mix.Perm[i] == i {
			return
		}
		lam := T(mix.Lam[i])
		rest := T(1 - mix.Lam[i])
		xs := x[i*per : (i+1)*per]
		ds := dst[i*per : (i+1)*per]
		for j := range xs {
			// Explicit conversions keep each product rounded, no FMA.
			xs[j] = T(xs[j] * lam)
			ds[j] = T(ds[j] * rest)
			xs[j] += ds[j]
		}
	}, cfg)
}
