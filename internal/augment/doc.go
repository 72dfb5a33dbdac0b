// Package augment implements batch-level augmentation operations.
//
// ImageMixup and LabelMixup form a pair: registered on the image and label
// fields of the same loader, they receive the same per-batch seed and draw
// the same permutation and weights from it. Neither references the other.
//
// The label side channel is a (batch, 3) float16 tensor holding, per sample,
// the original label, the partner's label and the weight of the original.
// A loss consumer combines them as
//
//	lam*loss(pred, label) + (1-lam)*loss(pred, partner)
//
// which MixedLoss implements.
package augment
