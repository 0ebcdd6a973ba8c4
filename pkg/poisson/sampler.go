// Package poisson scatters points over a mesh surface with area-weighted
// triangle picking and Poisson-disk rejection.
package poisson

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chazu/colliderbake/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrDegenerateSurface is returned when the sampled surface has no
	// area.
	ErrDegenerateSurface = errors.New("degenerate surface")
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid poisson parameters")
)

// normalEpsilon is the squared-length floor below which a triangle
// normal is ignored for inset.
const normalEpsilon = 1e-12

// pollEvery is how many attempts pass between context checks.
const pollEvery = 1024

// Source supplies uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic Source seeded with seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Params configures Sample.
type Params struct {
	Radius         float64 // minimum spacing between points of one triangle
	TargetCount    int
	MaxAttempts    int
	InsetDistance  float64 // scale applied to the unnormalized triangle normal
	ColliderRadius float64 // radius reported for spheres built from the points

	// AutoCoverage derives Radius, ColliderRadius and InsetDistance from the
	// surface area and TargetCount, overriding the manual values.
	AutoCoverage          bool
	ColliderToSampleRatio float64
	InsetFraction         float64
	CoverageFraction      float64

	// StrictSpacing also rejects candidates that are too close to points
	// accepted from other triangles.
	StrictSpacing bool
}

// Validate reports parameters Sample cannot work with.
func (p Params) Validate() error {
	switch {
	case p.TargetCount < 1:
		return fmt.Errorf("%w: target count %d < 1", ErrInvalidParams, p.TargetCount)
	case p.MaxAttempts < 0:
		return fmt.Errorf("%w: max attempts %d < 0", ErrInvalidParams, p.MaxAttempts)
	case p.Radius < 0:
		return fmt.Errorf("%w: radius %g < 0", ErrInvalidParams, p.Radius)
	case p.InsetDistance < 0:
		return fmt.Errorf("%w: inset %g < 0", ErrInvalidParams, p.InsetDistance)
	case p.AutoCoverage && p.ColliderToSampleRatio <= 0:
		return fmt.Errorf("%w: collider to sample ratio %g <= 0", ErrInvalidParams, p.ColliderToSampleRatio)
	case p.AutoCoverage && p.CoverageFraction <= 0:
		return fmt.Errorf("%w: coverage fraction %g <= 0", ErrInvalidParams, p.CoverageFraction)
	}
	return nil
}

// Result is the outcome of Sample.
type Result struct {
	Points          []v3.Vec
	SourceTriangles []int // view triangle each point was drawn from
	Attempts        int
	Requested       int

	// Effective values after auto coverage.
	Radius         float64
	ColliderRadius float64
	InsetDistance  float64
	SurfaceArea    float64
}

// Sample draws up to TargetCount points within MaxAttempts candidates.
// Each candidate comes from a triangle picked with probability
// proportional to its area, is pushed against the triangle normal by the
// inset, and is kept only if no point already accepted from the same
// triangle lies closer than Radius.
//
// A nil view returns mesh.ErrInvalidMesh and a surface without area
// returns ErrDegenerateSurface, both with an empty result. The context is
// checked every 1024 attempts.
func Sample(ctx context.Context, view *mesh.View, p Params, rng Source) (Result, error) {
	if view == nil || view.TriangleCount() == 0 {
		return Result{}, fmt.Errorf("poisson: %w: no triangles", mesh.ErrInvalidMesh)
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	cdf, total := BuildCDF(view)
	if total <= 0 {
		return Result{}, fmt.Errorf("poisson: %w: total area %g", ErrDegenerateSurface, total)
	}

	r2 := p.Radius * p.Radius
	if p.AutoCoverage {
		r2 = (total / float64(p.TargetCount)) * p.CoverageFraction / math.Pi
		p.Radius = math.Sqrt(r2)
		p.ColliderRadius = p.Radius / p.ColliderToSampleRatio
		p.InsetDistance = p.Radius * p.InsetFraction
	}

	res := Result{
		Requested:      p.TargetCount,
		Radius:         p.Radius,
		ColliderRadius: p.ColliderRadius,
		InsetDistance:  p.InsetDistance,
		SurfaceArea:    total,
	}
	byTriangle := make(map[int][]int)

	for res.Attempts < p.MaxAttempts && len(res.Points) < p.TargetCount {
		if res.Attempts%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		res.Attempts++

		ti := PickTriangle(cdf, rng.Float64())
		tri := view.Triangle(ti)
		pt := pointInTriangle(tri, rng)
		if p.InsetDistance > 0 {
			n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
			if n.Dot(n) > normalEpsilon {
				pt = pt.Sub(n.MulScalar(p.InsetDistance))
			}
		}

		if !farFrom(pt, res.Points, byTriangle[ti], r2) {
			continue
		}
		if p.StrictSpacing && !farFromAll(pt, res.Points, r2) {
			continue
		}
		byTriangle[ti] = append(byTriangle[ti], len(res.Points))
		res.Points = append(res.Points, pt)
		res.SourceTriangles = append(res.SourceTriangles, ti)
	}
	return res, nil
}

// pointInTriangle draws a uniform point inside t by folding the unit
// square onto the triangle.
func pointInTriangle(t [3]v3.Vec, rng Source) v3.Vec {
	u, v := rng.Float64(), rng.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	return t[0].Add(t[1].Sub(t[0]).MulScalar(u)).Add(t[2].Sub(t[0]).MulScalar(v))
}

func farFrom(p v3.Vec, points []v3.Vec, idx []int, r2 float64) bool {
	for _, i := range idx {
		d := points[i].Sub(p)
		if d.Dot(d) < r2 {
			return false
		}
	}
	return true
}

func farFromAll(p v3.Vec, points []v3.Vec, r2 float64) bool {
	for _, q := range points {
		d := q.Sub(p)
		if d.Dot(d) < r2 {
			return false
		}
	}
	return true
}
