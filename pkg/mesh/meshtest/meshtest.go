// Package meshtest provides small, fully specified meshes for tests.
package meshtest

import (
	"math"

	"github.com/chazu/colliderbake/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// cubeTriangles is the fixed triangulation used by Box. Corner i has
// coordinates (i&1, (i>>1)&1, (i>>2)&1) scaled into the box, and every
// triangle winds counter-clockwise seen from outside.
var cubeTriangles = []int{
	0, 4, 6, 0, 6, 2, // -X
	1, 3, 7, 1, 7, 5, // +X
	0, 1, 5, 0, 5, 4, // -Y
	2, 6, 7, 2, 7, 3, // +Y
	0, 2, 3, 0, 3, 1, // -Z
	4, 5, 7, 4, 7, 6, // +Z
}

// Box returns a closed 12-triangle box spanning min to max, with one region
// per face pair named "x", "y" and "z".
func Box(min, max v3.Vec) *mesh.Mesh {
	m := &mesh.Mesh{
		Vertices:  make([]v3.Vec, 8),
		Triangles: append([]int(nil), cubeTriangles...),
		Regions: []mesh.Region{
			{Name: "x", Start: 0, Count: 12},
			{Name: "y", Start: 12, Count: 12},
			{Name: "z", Start: 24, Count: 12},
		},
	}
	for i := range m.Vertices {
		p := min
		if i&1 != 0 {
			p.X = max.X
		}
		if i&2 != 0 {
			p.Y = max.Y
		}
		if i&4 != 0 {
			p.Z = max.Z
		}
		m.Vertices[i] = p
	}
	return m
}

// UnitCube returns Box((0,0,0), (1,1,1)).
func UnitCube() *mesh.Mesh {
	return Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
}

// Equilateral returns a single equilateral triangle with the given edge
// length lying in the z=0 plane.
func Equilateral(edge float64) *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []v3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: edge, Y: 0, Z: 0},
			{X: edge / 2, Y: edge * math.Sqrt(3) / 2, Z: 0},
		},
		Triangles: []int{0, 1, 2},
	}
}

// AreaRatio returns two disjoint right triangles in the z=0 plane whose
// areas are 0.5 and 1.5.
func AreaRatio() *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []v3.Vec{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
			{X: 5, Y: 0}, {X: 6, Y: 0}, {X: 5, Y: 3},
		},
		Triangles: []int{0, 1, 2, 3, 4, 5},
	}
}

// Square returns a side x side square in the z=0 plane made of two
// triangles.
func Square(side float64) *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []v3.Vec{
			{X: 0, Y: 0}, {X: side, Y: 0}, {X: side, Y: side}, {X: 0, Y: side},
		},
		Triangles: []int{0, 1, 2, 0, 2, 3},
	}
}
