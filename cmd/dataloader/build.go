package main

import (
	"math/rand/v2"

	"github.com/born-ml/dataloader/internal/augment"
	"github.com/born-ml/dataloader/internal/config"
	"github.com/born-ml/dataloader/internal/logger"
	"github.com/born-ml/dataloader/internal/parallel"
	"github.com/born-ml/dataloader/internal/pipeline"
	"github.com/born-ml/dataloader/internal/tensor"
)

const (
	imageField = "image"
	labelField = "label"
	numClasses = 10
)

// buildPipelines returns the image and label pipelines described by cfg.
func buildPipelines(cfg config.Config) ([]*pipeline.Pipeline, error) {
	dtype, err := cfg.ImageDType()
	if err != nil {
		return nil, err
	}

	var imageOps, labelOps []pipeline.Operation
	if cfg.Mixup.Enabled {
		img := augment.NewImageMixup(cfg.Mixup.Alpha)
		if cfg.Workers > 1 {
			// Batches already run in parallel; keep each blend on one goroutine.
			img.Parallel = parallel.Sequential()
		}
		imageOps = append(imageOps, img)
		labelOps = append(labelOps, augment.NewLabelMixup(cfg.Mixup.Alpha))
	}

	return []*pipeline.Pipeline{
		pipeline.New(imageField, pipeline.State{
			Stage:   pipeline.Batches,
			JITMode: true,
			Shape:   cfg.ImageShape(),
			DType:   dtype,
		}, imageOps...),
		pipeline.New(labelField, pipeline.State{
			Stage:   pipeline.Batches,
			JITMode: true,
			Shape:   tensor.Shape{},
			DType:   tensor.Int32,
		}, labelOps...),
	}, nil
}

// newLoader plans and compiles the pipelines described by cfg.
func newLoader(cfg config.Config, log logger.Logger) (*pipeline.Loader, error) {
	pipelines, err := buildPipelines(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewLoader(pipeline.LoaderConfig{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
		Seed:      cfg.Seed,
		Logger:    log,
	}, pipelines...)
}

// syntheticBatches generates random images and labels so the pipelines can
// be exercised without a dataset.
func syntheticBatches(cfg config.Config, epoch int) ([]pipeline.Batch, error) {
	dtype, err := cfg.ImageDType()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(epoch))) //nolint:gosec // Synthetic data only.
	shape := cfg.ImageShape()

	batches := make([]pipeline.Batch, cfg.Batches)
	for b := range batches {
		img, err := tensor.NewRaw(shape.WithBatch(cfg.BatchSize), dtype)
		if err != nil {
			return nil, err
		}
		switch dtype {
		case tensor.Float32:
			for i := range img.AsFloat32() {
				img.AsFloat32()[i] = rng.Float32()
			}
		case tensor.Float64:
			for i := range img.AsFloat64() {
				img.AsFloat64()[i] = rng.Float64()
			}
		}

		labels := make([]int32, cfg.BatchSize)
		for i := range labels {
			labels[i] = rng.Int32N(numClasses)
		}
		lab, err := tensor.FromInt32(tensor.Shape{cfg.BatchSize}, labels)
		if err != nil {
			return nil, err
		}

		batches[b] = pipeline.Batch{
			Index:  b,
			Fields: map[string]*tensor.RawTensor{imageField: img, labelField: lab},
		}
	}
	return batches, nil
}
