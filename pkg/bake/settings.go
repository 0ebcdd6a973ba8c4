package bake

import (
	"errors"
	"fmt"

	"github.com/chazu/colliderbake/pkg/grid"
	"github.com/chazu/colliderbake/pkg/poisson"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidSettings is wrapped by every Settings.Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the parameter bundle of one strategy. The concrete types are
// VoxelSettings, DecompositionSettings and PoissonSettings.
type Settings interface {
	Strategy() Strategy
	Validate() error
}

// GridSettings describes the voxel grid in world units. CellSize and
// Padding are converted to mesh-local units with the input scale.
type GridSettings struct {
	// UseCellsPerEdge builds CellsPerEdge cells on every axis instead of
	// fixed-size cells.
	UseCellsPerEdge bool    `toml:"use_cells_per_edge"`
	CellSize        float64 `toml:"cell_size"`
	CellsPerEdge    int     `toml:"cells_per_edge"`
	Padding         float64 `toml:"padding"`
}

func defaultGrid() GridSettings {
	return GridSettings{CellSize: 0.1, CellsPerEdge: 10}
}

func (g GridSettings) validate() error {
	switch {
	case g.UseCellsPerEdge && g.CellsPerEdge < 1:
		return fmt.Errorf("%w: cells per edge %d < 1", ErrInvalidSettings, g.CellsPerEdge)
	case !g.UseCellsPerEdge && g.CellSize <= 0:
		return fmt.Errorf("%w: cell size %g <= 0", ErrInvalidSettings, g.CellSize)
	case g.Padding < 0:
		return fmt.Errorf("%w: padding %g < 0", ErrInvalidSettings, g.Padding)
	}
	return nil
}

// Spec builds the grid over local bounds for a mesh with the given
// world scale.
func (g GridSettings) Spec(bounds sdf.Box3, scale v3.Vec) grid.Spec {
	padding := grid.WorldToLocal(g.Padding, scale)
	if g.UseCellsPerEdge {
		return grid.FromCellCount(bounds, g.CellsPerEdge, padding)
	}
	return grid.FromCellSize(bounds, grid.WorldToLocal(g.CellSize, scale), padding)
}

// VoxelSettings configures the voxel strategy.
type VoxelSettings struct {
	GridSettings
	// SizeMultiplier scales emitted box sizes about their centers.
	SizeMultiplier float64 `toml:"size_multiplier"`
	// Merge greedily combines occupied cells into larger boxes. When false
	// every occupied cell becomes its own box.
	Merge         bool `toml:"merge"`
	MaxBoxes      int  `toml:"max_boxes"`      // 0 means no cap
	RayDirections int  `toml:"ray_directions"` // 1 to 3
	Workers       int  `toml:"workers"`        // parallel x-slabs; 0 or 1 is sequential
	Trigger       bool `toml:"trigger"`
}

// DefaultVoxelSettings returns 0.1 unit cells, merging on, a 20000 box cap
// and three-ray voting.
func DefaultVoxelSettings() VoxelSettings {
	return VoxelSettings{
		GridSettings:   defaultGrid(),
		SizeMultiplier: 1,
		Merge:          true,
		MaxBoxes:       20000,
		RayDirections:  3,
	}
}

func (VoxelSettings) Strategy() Strategy { return Voxel }

func (s VoxelSettings) Validate() error {
	if err := s.GridSettings.validate(); err != nil {
		return err
	}
	switch {
	case s.SizeMultiplier <= 0:
		return fmt.Errorf("%w: size multiplier %g <= 0", ErrInvalidSettings, s.SizeMultiplier)
	case s.MaxBoxes < 0:
		return fmt.Errorf("%w: max boxes %d < 0", ErrInvalidSettings, s.MaxBoxes)
	case s.RayDirections < 1 || s.RayDirections > 3:
		return fmt.Errorf("%w: ray directions %d outside [1,3]", ErrInvalidSettings, s.RayDirections)
	case s.Workers < 0:
		return fmt.Errorf("%w: workers %d < 0", ErrInvalidSettings, s.Workers)
	}
	return nil
}

// DecompositionSettings configures the decomposition strategy.
type DecompositionSettings struct {
	GridSettings
	MaxFragments  int  `toml:"max_fragments"`  // 0 means no cap
	MinTriangles  int  `toml:"min_triangles"`  // smaller buckets are dropped
	WarnTriangles int  `toml:"warn_triangles"` // larger buckets are reported; 0 disables
	Convex        bool `toml:"convex"`
	Trigger       bool `toml:"trigger"`
}

// DefaultDecompositionSettings returns 0.1 unit cells, a 2000 fragment cap
// and 4/5000 triangle thresholds.
func DefaultDecompositionSettings() DecompositionSettings {
	return DecompositionSettings{
		GridSettings:  defaultGrid(),
		MaxFragments:  2000,
		MinTriangles:  4,
		WarnTriangles: 5000,
	}
}

func (DecompositionSettings) Strategy() Strategy { return Decomposition }

func (s DecompositionSettings) Validate() error {
	if err := s.GridSettings.validate(); err != nil {
		return err
	}
	switch {
	case s.MaxFragments < 0:
		return fmt.Errorf("%w: max fragments %d < 0", ErrInvalidSettings, s.MaxFragments)
	case s.MinTriangles < 0:
		return fmt.Errorf("%w: min triangles %d < 0", ErrInvalidSettings, s.MinTriangles)
	case s.WarnTriangles < 0:
		return fmt.Errorf("%w: warn triangles %d < 0", ErrInvalidSettings, s.WarnTriangles)
	}
	return nil
}

// PoissonSettings configures the Poisson strategy.
type PoissonSettings struct {
	Radius         float64 `toml:"radius"`
	TargetCount    int     `toml:"target_count"`
	MaxAttempts    int     `toml:"max_attempts"`
	InsetDistance  float64 `toml:"inset_distance"`
	ColliderRadius float64 `toml:"collider_radius"`

	AutoCoverage          bool    `toml:"auto_coverage"`
	ColliderToSampleRatio float64 `toml:"collider_to_sample_ratio"`
	InsetFraction         float64 `toml:"inset_fraction"`
	CoverageFraction      float64 `toml:"coverage_fraction"`
	StrictSpacing         bool    `toml:"strict_spacing"`

	// Seed feeds the sampler when the input carries no random source.
	Seed    uint64 `toml:"seed"`
	Trigger bool   `toml:"trigger"`
}

// DefaultPoissonSettings returns radius 0.25, 500 points within 200000
// attempts, 0.02 inset and 0.05 collider spheres.
func DefaultPoissonSettings() PoissonSettings {
	return PoissonSettings{
		Radius:                0.25,
		TargetCount:           500,
		MaxAttempts:           200000,
		InsetDistance:         0.02,
		ColliderRadius:        0.05,
		ColliderToSampleRatio: 2,
		InsetFraction:         0.2,
		CoverageFraction:      1,
	}
}

func (PoissonSettings) Strategy() Strategy { return Poisson }

func (s PoissonSettings) Validate() error {
	if err := s.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// Params converts the settings to sampler parameters.
func (s PoissonSettings) Params() poisson.Params {
	return poisson.Params{
		Radius:                s.Radius,
		TargetCount:           s.TargetCount,
		MaxAttempts:           s.MaxAttempts,
		InsetDistance:         s.InsetDistance,
		ColliderRadius:        s.ColliderRadius,
		AutoCoverage:          s.AutoCoverage,
		ColliderToSampleRatio: s.ColliderToSampleRatio,
		InsetFraction:         s.InsetFraction,
		CoverageFraction:      s.CoverageFraction,
		StrictSpacing:         s.StrictSpacing,
	}
}

// Default returns the default settings for a strategy.
func Default(s Strategy) (Settings, error) {
	switch s {
	case Voxel:
		return DefaultVoxelSettings(), nil
	case Decomposition:
		return DefaultDecompositionSettings(), nil
	case Poisson:
		return DefaultPoissonSettings(), nil
	}
	return nil, fmt.Errorf("bake: unknown strategy %v", s)
}
