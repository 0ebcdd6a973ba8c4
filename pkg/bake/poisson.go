package bake

import (
	"context"
	"fmt"

	"github.com/chazu/colliderbake/pkg/poisson"
	"github.com/chazu/colliderbake/pkg/primitive"
)

type poissonBaker struct{}

func (poissonBaker) Strategy() Strategy { return Poisson }

func (poissonBaker) Bake(ctx context.Context, in Input, s Settings) (*Result, error) {
	ps, ok := s.(PoissonSettings)
	if !ok {
		return &Result{Strategy: Poisson}, mismatch(Poisson, s)
	}
	res := &Result{Strategy: Poisson, Trigger: ps.Trigger, Requested: ps.TargetCount}
	view, err := in.view()
	if err != nil {
		return res, err
	}

	rng := in.Rand
	if rng == nil {
		rng = poisson.NewSource(ps.Seed)
	}
	log := in.logger()

	out, err := poisson.Sample(ctx, view, ps.Params(), rng)
	if err != nil {
		return res, fmt.Errorf("bake: sample: %w", err)
	}
	log.Debug("sampled",
		"area", out.SurfaceArea,
		"radius", out.Radius,
		"collider_radius", out.ColliderRadius,
		"attempts", out.Attempts)

	res.Primitives = primitive.Spheres(out.Points, out.ColliderRadius)
	res.Produced = len(res.Primitives)
	res.Attempts = out.Attempts

	if res.Produced < res.Requested {
		res.warn(log, Warning{
			Kind:    UnderSampled,
			Message: fmt.Sprintf("accepted %d of %d points in %d attempts", res.Produced, res.Requested, out.Attempts),
			Count:   res.Produced,
		})
	}
	return res, nil
}
