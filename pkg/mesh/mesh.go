// Package mesh holds the triangle meshes that collision primitives are baked
// from, and read-only views over subsets of them.
package mesh

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidMesh reports a triangle list that cannot be baked: empty, not a
// multiple of three, or referencing missing vertices. Callers treat it as
// "nothing to bake".
var ErrInvalidMesh = errors.New("invalid mesh")

// Region names a contiguous range of the triangle index list, the way a
// renderer describes a sub-mesh. Start and Count are index offsets, not
// triangle offsets, and both are multiples of 3 for a well-formed mesh.
type Region struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	Count int    `json:"count"`
}

// Mesh is an indexed triangle mesh. Triangles holds three vertex indices per
// triangle. A Mesh is treated as immutable once handed to a View.
type Mesh struct {
	Vertices  []v3.Vec `json:"vertices"`
	Triangles []int    `json:"triangles"`
	Regions   []Region `json:"regions,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) < 3
}

// Validate checks the index list against the vertex list.
func (m *Mesh) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	}
	if err := checkIndices(m.Triangles, len(m.Vertices)); err != nil {
		return err
	}
	for i, r := range m.Regions {
		if r.Start < 0 || r.Count < 0 || r.Start+r.Count > len(m.Triangles) {
			return fmt.Errorf("%w: region %d (%q) range [%d,%d) outside %d indices",
				ErrInvalidMesh, i, r.Name, r.Start, r.Start+r.Count, len(m.Triangles))
		}
	}
	return nil
}

// RegionIndices maps region names to their indices in m.Regions. An
// unknown name is an error wrapping ErrInvalidMesh.
func (m *Mesh) RegionIndices(names ...string) ([]int, error) {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		found := -1
		for i, r := range m.Regions {
			if r.Name == name {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("%w: no region named %q", ErrInvalidMesh, name)
		}
		idx = append(idx, found)
	}
	return idx, nil
}

// Bounds returns the bounds of every vertex in the mesh.
func (m *Mesh) Bounds() sdf.Box3 {
	return boundsOf(m.Vertices)
}

func checkIndices(indices []int, vertexCount int) error {
	if len(indices) < 3 {
		return fmt.Errorf("%w: %d indices, need at least one triangle", ErrInvalidMesh, len(indices))
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidMesh, len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= vertexCount {
			return fmt.Errorf("%w: index %d at position %d out of range (%d vertices)",
				ErrInvalidMesh, idx, i, vertexCount)
		}
	}
	return nil
}

// boundsOf returns the axis-aligned bounds of pts. An empty slice yields the
// zero box.
func boundsOf(pts []v3.Vec) sdf.Box3 {
	if len(pts) == 0 {
		return sdf.Box3{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// FromFlat builds a Mesh from flat renderer-style arrays: three floats per
// vertex and three indices per triangle.
func FromFlat(vertices []float32, indices []uint32) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("%w: vertex array length %d is not a multiple of 3", ErrInvalidMesh, len(vertices))
	}
	m := &Mesh{
		Vertices:  make([]v3.Vec, len(vertices)/3),
		Triangles: make([]int, len(indices)),
	}
	for i := range m.Vertices {
		m.Vertices[i] = v3.Vec{
			X: float64(vertices[i*3]),
			Y: float64(vertices[i*3+1]),
			Z: float64(vertices[i*3+2]),
		}
	}
	for i, idx := range indices {
		m.Triangles[i] = int(idx)
	}
	return m, nil
}
