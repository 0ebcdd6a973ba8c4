package bake

import (
	"context"
	"fmt"

	"github.com/chazu/colliderbake/pkg/primitive"
	"github.com/chazu/colliderbake/pkg/voxel"
)

type voxelBaker struct{}

func (voxelBaker) Strategy() Strategy { return Voxel }

func (voxelBaker) Bake(ctx context.Context, in Input, s Settings) (*Result, error) {
	vs, ok := s.(VoxelSettings)
	if !ok {
		return &Result{Strategy: Voxel}, mismatch(Voxel, s)
	}
	res := &Result{Strategy: Voxel, Trigger: vs.Trigger}
	view, err := in.view()
	if err != nil {
		return res, err
	}

	log := in.logger()
	spec := vs.Spec(view.Bounds(), in.scale())
	res.Grid = &spec
	log.Debug("voxelizing", "grid", spec.String(), "triangles", view.TriangleCount(), "directions", vs.RayDirections)

	field, err := voxel.Voxelize(ctx, view, spec, voxel.Options{Directions: vs.RayDirections, Workers: vs.Workers})
	if err != nil {
		return res, fmt.Errorf("bake: voxelize: %w", err)
	}
	log.Debug("occupancy", "filled", field.Count(), "cells", spec.CellCount())

	opts := voxel.MergeOptions{SizeMultiplier: vs.SizeMultiplier, MaxBoxes: vs.MaxBoxes}
	var boxes []primitive.Box
	if vs.Merge {
		boxes, res.Truncated = voxel.Merge(field, spec, opts)
	} else {
		boxes, res.Truncated = voxel.Cells(field, spec, opts)
	}
	res.Primitives = primitive.Boxes(boxes)
	res.Produced = len(res.Primitives)

	if res.Truncated {
		res.warn(log, Warning{
			Kind:    CapacityExceeded,
			Message: fmt.Sprintf("reached max boxes %d, stopping early", vs.MaxBoxes),
			Count:   vs.MaxBoxes,
		})
	}
	return res, nil
}
