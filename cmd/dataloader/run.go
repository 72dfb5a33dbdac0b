package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/dataloader/internal/augment"
	"github.com/born-ml/dataloader/internal/config"
	"github.com/born-ml/dataloader/internal/logger"
	"github.com/born-ml/dataloader/internal/pipeline"
)

func runCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.IntFlag{
			Name:    "epochs",
			Aliases: []string{"e"},
			Usage:   "number of epochs",
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Run synthetic batches through the pipelines",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := logger.ForFormat(os.Stderr, cfg.LogFormat, cfg.LogLevel)
			return run(logger.WithContext(ctx, log), cfg)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log := logger.FromContext(ctx)

	loader, err := newLoader(cfg, log)
	if err != nil {
		return err
	}

	var processed atomic.Int64
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		batches, err := syntheticBatches(cfg, epoch)
		if err != nil {
			return err
		}

		err = loader.Run(ctx, epoch, batches, func(b pipeline.Batch) error {
			processed.Add(1)
			if !cfg.Mixup.Enabled {
				return nil
			}
			pairs, err := augment.Pairs(b.Fields[labelField])
			if err != nil {
				return err
			}
			log.Debug("mixed batch",
				"epoch", epoch,
				"batch", b.Index,
				"mean_weight", meanWeight(pairs),
				"self_pairs", selfPairs(pairs))
			return nil
		})
		if err != nil {
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}
	}

	log.Info("run complete", "epochs", cfg.Epochs, "batches", processed.Load())
	return nil
}

func meanWeight(pairs []augment.Pair) float32 {
	if len(pairs) == 0 {
		return 0
	}
	var sum float32
	for _, p := range pairs {
		sum += p.Weight
	}
	return sum / float32(len(pairs))
}

// selfPairs counts samples whose label was mixed with an identical label.
func selfPairs(pairs []augment.Pair) int {
	n := 0
	for _, p := range pairs {
		if p.Label == p.Partner {
			n++
		}
	}
	return n
}
