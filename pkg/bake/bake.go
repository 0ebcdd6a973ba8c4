// Package bake runs one approximation strategy over a mesh and collects the
// resulting collision primitives. Each strategy is a Baker; Bake picks the
// registered Baker and checks that the settings belong to it before any
// grid or sampling work starts.
package bake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/colliderbake/pkg/grid"
	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/chazu/colliderbake/pkg/poisson"
	"github.com/chazu/colliderbake/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrSettingsMismatch is returned when the settings variant does not belong
// to the requested strategy.
var ErrSettingsMismatch = errors.New("settings do not match strategy")

// Input is the mesh to approximate and its context.
type Input struct {
	Mesh *mesh.Mesh
	// Regions restricts the bake to these mesh regions, in order. Empty
	// means the whole mesh.
	Regions []int
	// Scale is the mesh's world scale, used to convert world-unit cell
	// sizes and padding to local units. The zero value means unit scale.
	Scale v3.Vec
	// Rand drives Poisson sampling. Nil seeds a source from the settings.
	Rand poisson.Source
	// Logger receives progress and advisory messages. Nil uses
	// slog.Default.
	Logger *slog.Logger
}

func (in Input) view() (*mesh.View, error) {
	if in.Mesh == nil || in.Mesh.IsEmpty() {
		return nil, fmt.Errorf("bake: %w: mesh has no triangles", mesh.ErrInvalidMesh)
	}
	v, err := mesh.NewView(in.Mesh, in.Regions...)
	if err != nil {
		return nil, fmt.Errorf("bake: %w", err)
	}
	return v, nil
}

func (in Input) scale() v3.Vec {
	if in.Scale == (v3.Vec{}) {
		return v3.Vec{X: 1, Y: 1, Z: 1}
	}
	return in.Scale
}

func (in Input) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.Default()
}

// Result is the output of one bake.
type Result struct {
	Strategy   Strategy
	Primitives []primitive.Primitive
	Warnings   []Warning
	// Truncated reports that a primitive cap stopped generation early.
	Truncated bool
	// Requested is the Poisson target count; Produced is len(Primitives).
	Requested int
	Produced  int

	// Grid is the voxel grid used by the voxel and decomposition
	// strategies.
	Grid *grid.Spec
	// Attempts is the number of Poisson candidates drawn.
	Attempts int

	// Collider hints for the caller attaching the primitives.
	Trigger bool
	Convex  bool
}

func (r *Result) warn(log *slog.Logger, w Warning) {
	r.Warnings = append(r.Warnings, w)
	log.Warn(w.Message, "strategy", r.Strategy.String(), "kind", w.Kind.String())
}

// Baker runs one strategy.
type Baker interface {
	Strategy() Strategy
	// Bake approximates the input mesh. On invalid input it returns an
	// empty, non-nil Result together with the error.
	Bake(ctx context.Context, in Input, s Settings) (*Result, error)
}

var bakers = map[Strategy]Baker{}

// Register installs b for its strategy, replacing any earlier Baker.
func Register(b Baker) {
	bakers[b.Strategy()] = b
}

// Lookup returns the Baker registered for s.
func Lookup(s Strategy) (Baker, bool) {
	b, ok := bakers[s]
	return b, ok
}

func init() {
	Register(voxelBaker{})
	Register(decompositionBaker{})
	Register(poissonBaker{})
}

// Bake validates the settings against the strategy and runs it. Like a
// Baker, it returns an empty, non-nil Result alongside any error.
func Bake(ctx context.Context, strategy Strategy, in Input, s Settings) (*Result, error) {
	if s == nil {
		return &Result{Strategy: strategy}, fmt.Errorf("bake: %w: no settings for %v", ErrSettingsMismatch, strategy)
	}
	if s.Strategy() != strategy {
		return &Result{Strategy: strategy}, fmt.Errorf("bake: %w: %v settings for %v", ErrSettingsMismatch, s.Strategy(), strategy)
	}
	b, ok := Lookup(strategy)
	if !ok {
		return &Result{Strategy: strategy}, fmt.Errorf("bake: no baker registered for %v", strategy)
	}
	if err := s.Validate(); err != nil {
		return &Result{Strategy: strategy}, fmt.Errorf("bake: %v: %w", strategy, err)
	}

	log := in.logger()
	res, err := b.Bake(ctx, in, s)
	if err != nil {
		log.Error("bake failed", "strategy", strategy.String(), "err", err)
		return res, err
	}
	log.Info("bake complete",
		"strategy", strategy.String(),
		"primitives", res.Produced,
		"warnings", len(res.Warnings),
		"truncated", res.Truncated)
	return res, nil
}

// mismatch reports settings handed directly to the wrong Baker.
func mismatch(want Strategy, s Settings) error {
	got := "nil"
	if s != nil {
		got = s.Strategy().String()
	}
	return fmt.Errorf("bake: %w: %s settings for %v", ErrSettingsMismatch, got, want)
}
