package utils

import (
	"errors"
	"fmt"
	"math"

	"github.com/voxelsplace/vdb2density/density"
)

// ErrInvalidConfig reports an unusable combination of options.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the options of one conversion run.
type Config struct {
	Input       string
	Grid        string
	Output      string
	MetadataKey string

	SkipOutOfRange bool
	MaxCells       int
	Compress       bool

	Preview          string
	PreviewThreshold float64
}

// Validate checks c and fills in defaults.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: no input file", ErrInvalidConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: empty output prefix", ErrInvalidConfig)
	}
	if c.Grid == "" {
		c.Grid = density.DefaultGrid
	}
	if c.MaxCells < 0 {
		return fmt.Errorf("%w: negative cell limit", ErrInvalidConfig)
	}
	if math.IsNaN(c.PreviewThreshold) {
		return fmt.Errorf("%w: preview threshold is NaN", ErrInvalidConfig)
	}
	return nil
}

// DensityPath is the main output file.
func (c *Config) DensityPath() string { return c.Output + ".density" }

// CompressedPath is the zstd copy written with Compress.
func (c *Config) CompressedPath() string { return c.DensityPath() + ".zst" }

func (c *Config) options() density.Options {
	return density.Options{
		Grid:          c.Grid,
		MetadataKey:   c.MetadataKey,
		RasterOptions: density.RasterOptions{SkipOutOfRange: c.SkipOutOfRange, MaxCells: c.MaxCells},
	}
}
