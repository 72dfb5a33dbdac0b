// Package config loads dataloader settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/dataloader/internal/tensor"
)

// Config is the dataloader configuration file.
type Config struct {
	BatchSize int    `yaml:"batch_size"`
	Workers   int    `yaml:"workers"`
	Seed      uint64 `yaml:"seed"`
	Epochs    int    `yaml:"epochs"`
	Batches   int    `yaml:"batches"` // Synthetic batches per epoch for the run command.

	Image Image `yaml:"image"`
	Mixup Mixup `yaml:"mixup"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Image describes the per-sample image tensor.
type Image struct {
	Shape []int  `yaml:"shape"`
	DType string `yaml:"dtype"`
}

// Mixup configures the mixup pair.
type Mixup struct {
	Enabled bool    `yaml:"enabled"`
	Alpha   float64 `yaml:"alpha"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		BatchSize: 32,
		Workers:   4,
		Seed:      0,
		Epochs:    1,
		Batches:   8,
		Image: Image{
			Shape: []int{3, 32, 32},
			DType: "float32",
		},
		Mixup: Mixup{
			Enabled: true,
			Alpha:   0.2,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.Epochs < 0 {
		errs = append(errs, fmt.Errorf("epochs must be >= 0, got %d", c.Epochs))
	}
	if c.Batches < 0 {
		errs = append(errs, fmt.Errorf("batches must be >= 0, got %d", c.Batches))
	}
	if err := tensor.Shape(c.Image.Shape).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("image.shape: %w", err))
	}
	if _, err := c.ImageDType(); err != nil {
		errs = append(errs, err)
	}
	if c.Mixup.Alpha < 0 {
		errs = append(errs, fmt.Errorf("mixup.alpha must be >= 0, got %g", c.Mixup.Alpha))
	}
	return errors.Join(errs...)
}

// ImageShape returns the per-sample image shape.
func (c Config) ImageShape() tensor.Shape {
	return tensor.Shape(c.Image.Shape).Clone()
}

// ImageDType parses the image dtype name.
func (c Config) ImageDType() (tensor.DataType, error) {
	dt, ok := tensor.ParseDataType(c.Image.DType)
	if !ok {
		return 0, fmt.Errorf("image.dtype: unknown dtype %q", c.Image.DType)
	}
	return dt, nil
}
