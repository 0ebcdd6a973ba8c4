// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/colliderbake/pkg/kernel"
	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultResolution is the marching cubes cell count along the longest
// bounding box edge.
const DefaultResolution = 200

// weldScale quantizes vertex coordinates before welding so that the
// copies of an edge vertex emitted by neighbouring cubes merge.
const weldScale = 1e9

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() sdf.Box3 {
	return s.s.BoundingBox()
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	resolution int
}

// New returns a kernel tessellating at DefaultResolution.
func New() *SdfxKernel {
	return NewWithResolution(DefaultResolution)
}

// NewWithResolution returns a kernel whose marching cubes grid has cells
// cells along the longest edge. Values below 8 are raised to 8.
func NewWithResolution(cells int) *SdfxKernel {
	if cells < 8 {
		cells = 8
	}
	return &SdfxKernel{resolution: cells}
}

// Resolution returns the marching cubes cell count.
func (k *SdfxKernel) Resolution() int { return k.resolution }

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func unwrapAll(ss []kernel.Solid) []sdf.SDF3 {
	out := make([]sdf.SDF3, len(ss))
	for i, s := range ss {
		out[i] = unwrap(s)
	}
	return out
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box of the given size centered on the origin.
func (k *SdfxKernel) Box(size v3.Vec) (kernel.Solid, error) {
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box %v: %w", size, err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere r=%g: %w", radius, err)
	}
	return wrap(s), nil
}

// Cylinder creates a Z-aligned cylinder centered on the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder h=%g r=%g: %w", height, radius, err)
	}
	return wrap(s), nil
}

func (k *SdfxKernel) Union(a kernel.Solid, rest ...kernel.Solid) kernel.Solid {
	if len(rest) == 0 {
		return a
	}
	return wrap(sdf.Union3D(append([]sdf.SDF3{unwrap(a)}, unwrapAll(rest)...)...))
}

func (k *SdfxKernel) Difference(a kernel.Solid, rest ...kernel.Solid) kernel.Solid {
	s := unwrap(a)
	for _, b := range rest {
		s = sdf.Difference3D(s, unwrap(b))
	}
	return wrap(s)
}

func (k *SdfxKernel) Intersection(a kernel.Solid, rest ...kernel.Solid) kernel.Solid {
	s := unwrap(a)
	for _, b := range rest {
		s = sdf.Intersect3D(s, unwrap(b))
	}
	return wrap(s)
}

func (k *SdfxKernel) Translate(s kernel.Solid, offset v3.Vec) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(offset)))
}

// Rotate rotates a solid by Euler angles in degrees around X, then Y,
// then Z.
func (k *SdfxKernel) Rotate(s kernel.Solid, degrees v3.Vec) kernel.Solid {
	xRad := degrees.X * math.Pi / 180.0
	yRad := degrees.Y * math.Pi / 180.0
	zRad := degrees.Z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to an indexed triangle mesh using marching
// cubes. Coincident vertices are welded and triangles that collapse after
// welding are dropped.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*mesh.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.resolution)
	triangles := render.ToTriangles(unwrap(s), renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: tessellation produced no triangles")
	}

	w := newWelder(len(triangles))
	m := &mesh.Mesh{Triangles: make([]int, 0, len(triangles)*3)}
	for _, tri := range triangles {
		var idx [3]int
		for j := 0; j < 3; j++ {
			idx[j] = w.index(tri[j], &m.Vertices)
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		m.Triangles = append(m.Triangles, idx[0], idx[1], idx[2])
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	return m, nil
}

type weldKey [3]int64

type welder struct {
	seen map[weldKey]int
}

func newWelder(triangles int) *welder {
	return &welder{seen: make(map[weldKey]int, triangles/2)}
}

func (w *welder) index(p v3.Vec, vertices *[]v3.Vec) int {
	key := weldKey{
		int64(math.Round(p.X * weldScale)),
		int64(math.Round(p.Y * weldScale)),
		int64(math.Round(p.Z * weldScale)),
	}
	if i, ok := w.seen[key]; ok {
		return i
	}
	i := len(*vertices)
	*vertices = append(*vertices, p)
	w.seen[key] = i
	return i
}
