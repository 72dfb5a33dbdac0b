// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package augment provides batch augmentation operations for dataloader
// pipelines.
//
// Mixup is applied as a pair of operations, one per field, that agree on
// their random draws because the loader gives both the same per-batch seed:
//
//	image := pipeline.New("image", imageState, augment.NewImageMixup(0.2))
//	label := pipeline.New("label", labelState, augment.NewLabelMixup(0.2))
package augment

import (
	"github.com/born-ml/dataloader/internal/augment"
	"github.com/born-ml/dataloader/internal/tensor"
)

// Operation types.
type (
	ImageMixup = augment.ImageMixup
	LabelMixup = augment.LabelMixup
	Mix        = augment.Mix
	Pair       = augment.Pair
)

// LabelColumns is the width of the label mixup output.
const LabelColumns = augment.LabelColumns

// NewImageMixup returns an in-place image mixup operation.
func NewImageMixup(alpha float64) ImageMixup {
	return augment.NewImageMixup(alpha)
}

// NewLabelMixup returns the label side of mixup.
func NewLabelMixup(alpha float64) LabelMixup {
	return augment.NewLabelMixup(alpha)
}

// Draw returns the permutation and weights mixup uses for a batch.
func Draw(seed uint64, n int) Mix {
	return augment.Draw(seed, n)
}

// Pairs decodes a label mixup output.
func Pairs(mixed *tensor.RawTensor) ([]Pair, error) {
	return augment.Pairs(mixed)
}

// MixedLoss combines per-class losses according to mixup pairs.
func MixedLoss(pairs []Pair, loss func(i, class int) float32) float32 {
	return augment.MixedLoss(pairs, loss)
}
