package main

import (
	"github.com/urfave/cli/v3"

	"github.com/born-ml/dataloader/internal/config"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML config file",
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Aliases: []string{"b"},
			Usage:   "samples per batch",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "batches processed concurrently",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "base random seed",
		},
		&cli.FloatFlag{
			Name:  "alpha",
			Usage: "mixup alpha",
		},
		&cli.BoolFlag{
			Name:  "no-mixup",
			Usage: "build the pipelines without the mixup stages",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (text, json)",
		},
	}
}

// loadConfig reads the config file (if any) and applies flags that were
// explicitly set on the command line. Flag values are read from c, so every
// invocation starts from a clean slate.
func loadConfig(c *cli.Command) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Uint64("seed")
	}
	if c.IsSet("epochs") {
		cfg.Epochs = c.Int("epochs")
	}
	if c.IsSet("alpha") {
		cfg.Mixup.Alpha = c.Float("alpha")
	}
	if c.IsSet("no-mixup") {
		cfg.Mixup.Enabled = !c.Bool("no-mixup")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}

	return cfg, cfg.Validate()
}
