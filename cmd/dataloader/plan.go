package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/born-ml/dataloader/internal/logger"
	"github.com/born-ml/dataloader/internal/pipeline"
)

type planOutput struct {
	Pipelines  []pipeline.Summary `json:"pipelines"`
	Workers    int                `json:"workers"`
	ArenaBytes int                `json:"arena_bytes_per_worker"`
}

func planCmd() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Plan the pipelines and print stages and memory as JSON",
		Flags: commonFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := logger.ForFormat(os.Stderr, cfg.LogFormat, cfg.LogLevel)

			loader, err := newLoader(cfg, log)
			if err != nil {
				return err
			}

			out, err := describe(loader, cfg.Workers)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encode plan: %w", err)
			}
			_, err = fmt.Println(string(data))
			return err
		},
	}
}

func describe(loader *pipeline.Loader, workers int) (planOutput, error) {
	out := planOutput{Workers: workers}
	var slots []pipeline.Slot
	for _, p := range loader.Plans() {
		out.Pipelines = append(out.Pipelines, p.Describe())
		slots = append(slots, p.Slots()...)
	}

	if len(loader.Plans()) > 0 {
		arena, err := pipeline.NewArena(loader.Plans()[0].BatchSize, slots)
		if err != nil {
			return out, err
		}
		out.ArenaBytes = arena.Size()
	}
	return out, nil
}
