package augment

import (
	"github.com/x448/float16"

	"github.com/born-ml/dataloader/internal/pipeline"
	"github.com/born-ml/dataloader/internal/tensor"
)

// LabelColumns is the width of the label mixup side channel:
// original label, partner label, weight.
const LabelColumns = 3

// maxWeight16 is the largest float16 below 1.
var maxWeight16 = float16.Frombits(0x3BFF)

// LabelMixup records, for every sample, which label it was mixed with and
// by how much. Pair it with an ImageMixup on the image field.
//
// The side channel is float16, so every label value must be exactly
// representable in it: integer class ids up to 2048 always are. Batches
// holding any other value fail with ErrUnsupportedDType.
type LabelMixup struct {
	Alpha float64
}

// NewLabelMixup returns a LabelMixup.
func NewLabelMixup(alpha float64) LabelMixup {
	return LabelMixup{Alpha: alpha}
}

// Name implements pipeline.Named.
func (LabelMixup) Name() string {
	return "label_mixup"
}

// DeclareStateAndMemory asks for a (batch, 3) float16 buffer. Unlike
// ImageMixup it does not gate on stage or JIT mode.
func (LabelMixup) DeclareStateAndMemory(prev pipeline.State) (pipeline.State, *pipeline.AllocationQuery, error) {
	shape := tensor.Shape{LabelColumns}
	return prev.WithSample(shape, tensor.Float16), &pipeline.AllocationQuery{Shape: shape, DType: tensor.Float16}, nil
}

// GenerateCode returns the per-batch transform. Its output is dst.
func (m LabelMixup) GenerateCode() pipeline.Transform {
	name := m.Name()

	return func(state pipeline.State, labels, dst *tensor.RawTensor) (*tensor.RawTensor, error) {
		if labels == nil {
			return nil, &pipeline.MismatchError{Op: name, What: "labels", Want: "(n) or (n, 1)", Got: "nil", Kind: pipeline.ErrShapeMismatch}
		}
		if labels.DType() == tensor.Bool {
			return nil, &pipeline.MismatchError{Op: name, What: "labels", Want: "numeric", Got: labels.DType(), Kind: pipeline.ErrUnsupportedDType}
		}
		sample := labels.SampleShape()
		if len(labels.Shape()) == 0 || sample.NumElements() != 1 || len(sample) > 1 {
			return nil, &pipeline.MismatchError{Op: name, What: "labels", Want: "(n) or (n, 1)", Got: labels.Shape(), Kind: pipeline.ErrShapeMismatch}
		}

		n := labels.BatchSize()
		if err := pipeline.CheckSamples(name, "dst", dst, tensor.Shape{LabelColumns}, tensor.Float16); err != nil {
			return nil, err
		}
		if dst.BatchSize() != n {
			return nil, &pipeline.MismatchError{Op: name, What: "dst", Want: tensor.Shape{n, LabelColumns}, Got: dst.Shape(), Kind: pipeline.ErrShapeMismatch}
		}

		for i := 0; i < n; i++ {
			if v := labels.Float32At(i); float16.Fromfloat32(v).Float32() != v {
				return nil, &pipeline.MismatchError{Op: name, What: "label value", Want: "exact in float16", Got: v, Kind: pipeline.ErrUnsupportedDType}
			}
		}

		mix := Draw(state.RandomSeed, n)
		out := dst.AsFloat16()
		for i := 0; i < n; i++ {
			row := out[i*LabelColumns : (i+1)*LabelColumns]
			row[0] = float16.Fromfloat32(labels.Float32At(i))
			row[1] = float16.Fromfloat32(labels.Float32At(mix.Perm[i]))
			row[2] = weight16(mix.Lam[i])
		}

		return dst, nil
	}
}

// weight16 rounds lam to float16, keeping the result below 1.
func weight16(lam float64) float16.Float16 {
	w := float16.Fromfloat32(float32(lam))
	if w.Float32() >= 1 {
		return maxWeight16
	}
	return w
}
