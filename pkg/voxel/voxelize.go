package voxel

import (
	"context"
	"fmt"

	"github.com/chazu/colliderbake/pkg/grid"
	"github.com/chazu/colliderbake/pkg/mesh"
	"golang.org/x/sync/errgroup"
)

// Options controls occupancy classification.
type Options struct {
	// Directions is the number of axis rays per cell: 1 casts +X only, 2 or
	// more casts +X, +Y and +Z and takes a majority vote.
	Directions int
	// Workers is the number of goroutines classifying x-slabs. Values below
	// 2 classify sequentially on the calling goroutine.
	Workers int
}

// Voxelize classifies the center of every cell in spec against the view.
// The result depends only on the view, spec and Directions; Workers changes
// the schedule, never the field. Grids above grid.MaxCells are rejected
// with grid.ErrTooManyCells.
func Voxelize(ctx context.Context, view *mesh.View, spec grid.Spec, opts Options) (*Field, error) {
	if view == nil {
		return nil, fmt.Errorf("voxelize: %w: nil view", mesh.ErrInvalidMesh)
	}
	if err := spec.Check(grid.MaxCells); err != nil {
		return nil, fmt.Errorf("voxelize: %w", err)
	}
	field := NewField(spec.Counts)

	if opts.Workers < 2 {
		for x := 0; x < spec.Counts.X; x++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			classifySlab(view, spec, field, x, opts.Directions)
		}
		return field, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for x := 0; x < spec.Counts.X; x++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			classifySlab(view, spec, field, x, opts.Directions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return field, nil
}

// classifySlab fills every cell with the given x index. Slabs write disjoint
// parts of the field.
func classifySlab(view *mesh.View, spec grid.Spec, field *Field, x, directions int) {
	for y := 0; y < spec.Counts.Y; y++ {
		for z := 0; z < spec.Counts.Z; z++ {
			c := grid.Cell{X: x, Y: y, Z: z}
			if IsInside(view, spec.CellCenter(c), directions) {
				field.Set(x, y, z, true)
			}
		}
	}
}
