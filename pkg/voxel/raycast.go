package voxel

import (
	"github.com/chazu/colliderbake/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// rayEpsilon rejects near-parallel rays and hits at or behind the origin.
const rayEpsilon = 1e-8

// Axis ray directions used for parity voting.
var (
	dirX = v3.Vec{X: 1}
	dirY = v3.Vec{Y: 1}
	dirZ = v3.Vec{Z: 1}
)

// RayIntersectsTriangle reports whether the ray from origin along dir hits
// triangle abc strictly in front of the origin (Möller–Trumbore).
func RayIntersectsTriangle(origin, dir, a, b, c v3.Vec) bool {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)

	h := dir.Cross(edge2)
	det := edge1.Dot(h)
	if det > -rayEpsilon && det < rayEpsilon {
		return false
	}

	f := 1 / det
	s := origin.Sub(a)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}

	t := f * edge2.Dot(q)
	return t > rayEpsilon
}

// parity counts the view's triangles hit by the ray and reports whether the
// count is odd.
func parity(view *mesh.View, origin, dir v3.Vec) bool {
	hits := 0
	for i, n := 0, view.TriangleCount(); i < n; i++ {
		t := view.Triangle(i)
		if RayIntersectsTriangle(origin, dir, t[0], t[1], t[2]) {
			hits++
		}
	}
	return hits&1 == 1
}

// IsInside classifies p against the view by ray parity. With directions <= 1
// a single +X ray decides; otherwise +X, +Y and +Z rays vote and two of three
// must agree that p is inside.
func IsInside(view *mesh.View, p v3.Vec, directions int) bool {
	if directions <= 1 {
		return parity(view, p, dirX)
	}

	votes := 0
	if parity(view, p, dirX) {
		votes++
	}
	if parity(view, p, dirY) {
		votes++
	}
	if votes == 0 {
		// The +Z ray cannot reach a majority on its own.
		return false
	}
	if votes == 2 {
		return true
	}
	return parity(view, p, dirZ)
}
