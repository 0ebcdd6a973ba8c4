// Package kernel defines the abstract solid-modeling kernel used to build
// source meshes from recipes. Implementations (sdfx) provide primitives,
// boolean operations and tessellation behind this interface.
package kernel

import (
	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() sdf.Box3
}

// Kernel builds solids and tessellates them. All primitives are centered
// on the origin; cylinders run along Z.
type Kernel interface {
	// Primitives
	Box(size v3.Vec) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a Solid, rest ...Solid) Solid
	Difference(a Solid, rest ...Solid) Solid // a minus every solid in rest
	Intersection(a Solid, rest ...Solid) Solid

	// Transforms
	Translate(s Solid, offset v3.Vec) Solid
	Rotate(s Solid, degrees v3.Vec) Solid // Euler angles, applied X then Y then Z

	// Mesh output. The mesh has shared vertices and no regions.
	ToMesh(s Solid) (*mesh.Mesh, error)
}
