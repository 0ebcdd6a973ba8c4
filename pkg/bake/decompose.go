package bake

import (
	"context"
	"fmt"

	"github.com/chazu/colliderbake/pkg/decompose"
	"github.com/chazu/colliderbake/pkg/primitive"
)

type decompositionBaker struct{}

func (decompositionBaker) Strategy() Strategy { return Decomposition }

func (decompositionBaker) Bake(ctx context.Context, in Input, s Settings) (*Result, error) {
	ds, ok := s.(DecompositionSettings)
	if !ok {
		return &Result{Strategy: Decomposition}, mismatch(Decomposition, s)
	}
	res := &Result{Strategy: Decomposition, Trigger: ds.Trigger, Convex: ds.Convex}
	view, err := in.view()
	if err != nil {
		return res, err
	}

	log := in.logger()
	spec := ds.Spec(view.Bounds(), in.scale())
	res.Grid = &spec
	log.Debug("bucketing", "grid", spec.String(), "triangles", view.TriangleCount())

	out, err := decompose.Fragments(ctx, view, spec, decompose.Options{
		MinTriangles:  ds.MinTriangles,
		WarnTriangles: ds.WarnTriangles,
		MaxFragments:  ds.MaxFragments,
	})
	if err != nil {
		return res, fmt.Errorf("bake: decompose: %w", err)
	}
	log.Debug("buckets", "non_empty", out.Buckets, "skipped", out.Skipped)

	res.Primitives = make([]primitive.Primitive, len(out.Fragments))
	for i, f := range out.Fragments {
		res.Primitives[i] = f
	}
	res.Produced = len(res.Primitives)
	res.Truncated = out.Truncated

	for _, d := range out.Dense {
		res.warn(log, Warning{
			Kind:    DensityWarning,
			Message: fmt.Sprintf("cell %v has %d triangles; consider a smaller cell size", d.Cell, d.Triangles),
			Cell:    d.Cell,
			Count:   d.Triangles,
		})
	}
	if res.Truncated {
		res.warn(log, Warning{
			Kind:    CapacityExceeded,
			Message: fmt.Sprintf("reached max fragments %d, stopping", ds.MaxFragments),
			Count:   ds.MaxFragments,
		})
	}
	return res, nil
}
