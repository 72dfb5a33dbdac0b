// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pipeline provides the operation contract and driver for
// batch augmentation pipelines.
//
// Example:
//
//	image := pipeline.New("image", pipeline.State{
//	    Stage: pipeline.Batches, JITMode: true,
//	    Shape: tensor.Shape{3, 32, 32}, DType: tensor.Float32,
//	}, augment.NewImageMixup(0.2))
//	label := pipeline.New("label", pipeline.State{Stage: pipeline.Batches},
//	    augment.NewLabelMixup(0.2))
//
//	loader, err := pipeline.NewLoader(pipeline.LoaderConfig{BatchSize: 32, Workers: 4}, image, label)
//	err = loader.Run(ctx, epoch, batches, consume)
package pipeline

import (
	"github.com/born-ml/dataloader/internal/pipeline"
)

// Contract types.
type (
	State           = pipeline.State
	Stage           = pipeline.Stage
	AllocationQuery = pipeline.AllocationQuery
	Transform       = pipeline.Transform
	Operation       = pipeline.Operation
)

// Stage constants.
const (
	Individual = pipeline.Individual
	Batches    = pipeline.Batches
)

// Driver types.
type (
	Pipeline     = pipeline.Pipeline
	Plan         = pipeline.Plan
	Program      = pipeline.Program
	Arena        = pipeline.Arena
	Batch        = pipeline.Batch
	Loader       = pipeline.Loader
	LoaderConfig = pipeline.LoaderConfig
)

// Errors.
var (
	ErrPrecondition     = pipeline.ErrPrecondition
	ErrShapeMismatch    = pipeline.ErrShapeMismatch
	ErrDTypeMismatch    = pipeline.ErrDTypeMismatch
	ErrUnsupportedDType = pipeline.ErrUnsupportedDType
	ErrMissingField     = pipeline.ErrMissingField
)

// Error types.
type (
	PreconditionError = pipeline.PreconditionError
	MismatchError     = pipeline.MismatchError
)

// New creates a pipeline for the named field.
func New(name string, initial State, ops ...Operation) *Pipeline {
	return pipeline.New(name, initial, ops...)
}

// NewLoader plans and compiles pipelines and allocates worker arenas.
func NewLoader(cfg LoaderConfig, pipelines ...*Pipeline) (*Loader, error) {
	return pipeline.NewLoader(cfg, pipelines...)
}

// BatchSeed derives the per-batch seed shared by every field of a batch.
func BatchSeed(base uint64, epoch, index int) uint64 {
	return pipeline.BatchSeed(base, epoch, index)
}
