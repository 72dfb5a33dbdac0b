package augment

import (
	"github.com/born-ml/dataloader/internal/pipeline"
	"github.com/born-ml/dataloader/internal/tensor"
)

// Pair is one decoded row of the label mixup side channel.
type Pair struct {
	Label   float32 // Label of the sample itself
	Partner float32 // Label of the sample it was blended with
	Weight  float32 // Weight of the sample itself, in [0, 1)
}

// Pairs decodes a (n, 3) label mixup output.
func Pairs(mixed *tensor.RawTensor) ([]Pair, error) {
	if mixed == nil || len(mixed.Shape()) != 2 || mixed.Shape()[1] != LabelColumns {
		var got any = "nil"
		if mixed != nil {
			got = mixed.Shape()
		}
		return nil, &pipeline.MismatchError{Op: "pairs", What: "labels", Want: "(n, 3)", Got: got, Kind: pipeline.ErrShapeMismatch}
	}
	if mixed.DType() == tensor.Bool {
		return nil, &pipeline.MismatchError{Op: "pairs", What: "labels", Want: "numeric", Got: mixed.DType(), Kind: pipeline.ErrUnsupportedDType}
	}

	pairs := make([]Pair, mixed.BatchSize())
	for i := range pairs {
		pairs[i] = Pair{
			Label:   mixed.Float32At(i * LabelColumns),
			Partner: mixed.Float32At(i*LabelColumns + 1),
			Weight:  mixed.Float32At(i*LabelColumns + 2),
		}
	}
	return pairs, nil
}

// MixedLoss returns the batch mean of
//
//	w*loss(i, label) + (1-w)*loss(i, partner)
//
// where loss(i, class) is the per-sample loss of prediction i against the
// given class index. An empty batch has zero loss.
func MixedLoss(pairs []Pair, loss func(i, class int) float32) float32 {
	if len(pairs) == 0 {
		return 0
	}

	var total float32
	for i, p := range pairs {
		total += p.Weight*loss(i, int(p.Label)) + (1-p.Weight)*loss(i, int(p.Partner))
	}
	return total / float32(len(pairs))
}
