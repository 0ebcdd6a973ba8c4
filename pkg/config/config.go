// Package config loads colliderbake job files. A job file is TOML: the
// top level names the recipe and output, and optional [voxel],
// [decomposition] and [poisson] tables override the strategy defaults used
// when a recipe declares no bake forms of its own.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/colliderbake/pkg/bake"
	"github.com/chazu/colliderbake/pkg/kernel/sdfx"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is one bake job.
type Config struct {
	Recipe   string `toml:"recipe"`
	Output   string `toml:"output"` // empty writes to stdout
	LogLevel string `toml:"log_level"`
	// Timeout bounds recipe evaluation, as a time.ParseDuration string.
	Timeout string `toml:"timeout"`
	// Workers bounds part tessellation and, when positive, overrides the
	// voxel worker count.
	Workers int `toml:"workers"`
	// Seed, when non-zero, overrides the Poisson seed.
	Seed  uint64     `toml:"seed"`
	Scale [3]float64 `toml:"scale"`
	// Regions restricts the default job to these parts.
	Regions    []string `toml:"regions,omitempty"`
	Resolution int      `toml:"resolution"`

	Strategy      bake.Strategy              `toml:"strategy"`
	Voxel         bake.VoxelSettings         `toml:"voxel"`
	Decomposition bake.DecompositionSettings `toml:"decomposition"`
	Poisson       bake.PoissonSettings       `toml:"poisson"`
}

// Default returns a config with every field at its default.
func Default() Config {
	return Config{
		LogLevel:      "info",
		Timeout:       "5s",
		Scale:         [3]float64{1, 1, 1},
		Resolution:    sdfx.DefaultResolution,
		Strategy:      bake.Voxel,
		Voxel:         bake.DefaultVoxelSettings(),
		Decomposition: bake.DefaultDecompositionSettings(),
		Poisson:       bake.DefaultPoissonSettings(),
	}
}

// Load reads and validates the job file at path. Relative recipe and
// output paths are resolved against the file's directory.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for _, p := range []*string{&c.Recipe, &c.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return c, nil
}

// Decode reads a job file over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("config: line %d column %d: %s", row, col, derr.Error())
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return Config{}, fmt.Errorf("config: %w: %s", ErrInvalidConfig, serr.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Validate checks the top-level fields and every strategy table.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("%w: timeout: %w", ErrInvalidConfig, err)
	}
	switch {
	case d <= 0:
		return fmt.Errorf("%w: timeout %s <= 0", ErrInvalidConfig, d)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d < 0", ErrInvalidConfig, c.Workers)
	case c.Resolution < 1:
		return fmt.Errorf("%w: resolution %d < 1", ErrInvalidConfig, c.Resolution)
	}
	for i, s := range c.Scale {
		if s <= 0 {
			return fmt.Errorf("%w: scale[%d] %g <= 0", ErrInvalidConfig, i, s)
		}
	}
	for _, s := range []bake.Settings{c.Voxel, c.Decomposition, c.Poisson} {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: [%s]: %w", ErrInvalidConfig, s.Strategy(), err)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// EvalTimeout parses Timeout. Call Validate first.
func (c Config) EvalTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// ScaleVec returns Scale as a vector.
func (c Config) ScaleVec() v3.Vec {
	return v3.Vec{X: c.Scale[0], Y: c.Scale[1], Z: c.Scale[2]}
}

// Settings returns the table for the configured strategy.
func (c Config) Settings() bake.Settings {
	return c.Apply(c.settingsFor(c.Strategy))
}

func (c Config) settingsFor(s bake.Strategy) bake.Settings {
	switch s {
	case bake.Decomposition:
		return c.Decomposition
	case bake.Poisson:
		return c.Poisson
	default:
		return c.Voxel
	}
}

// Apply returns s with the top-level Workers and Seed overrides applied.
func (c Config) Apply(s bake.Settings) bake.Settings {
	switch v := s.(type) {
	case bake.VoxelSettings:
		if c.Workers > 0 {
			v.Workers = c.Workers
		}
		return v
	case bake.PoissonSettings:
		if c.Seed != 0 {
			v.Seed = c.Seed
		}
		return v
	}
	return s
}
