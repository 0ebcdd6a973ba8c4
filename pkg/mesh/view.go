package mesh

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// View is a read-only window over a Mesh, optionally restricted to a subset
// of its regions. Baking operates on views, never on the Mesh directly.
type View struct {
	mesh    *Mesh
	indices []int
	bounds  sdf.Box3
}

// NewView builds a view over m. With no region indices the whole mesh is
// used; otherwise the listed regions' index ranges are concatenated in the
// order given. It fails with ErrInvalidMesh if fewer than one full triangle
// remains or the index list is malformed.
func NewView(m *Mesh, regions ...int) (*View, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	}

	if len(regions) == 0 {
		if err := checkIndices(m.Triangles, len(m.Vertices)); err != nil {
			return nil, err
		}
		return &View{mesh: m, indices: m.Triangles, bounds: m.Bounds()}, nil
	}

	var indices []int
	for _, ri := range regions {
		if ri < 0 || ri >= len(m.Regions) {
			return nil, fmt.Errorf("%w: region %d does not exist (%d regions)", ErrInvalidMesh, ri, len(m.Regions))
		}
		r := m.Regions[ri]
		if r.Start < 0 || r.Count < 0 || r.Start+r.Count > len(m.Triangles) {
			return nil, fmt.Errorf("%w: region %q range [%d,%d) outside %d indices",
				ErrInvalidMesh, r.Name, r.Start, r.Start+r.Count, len(m.Triangles))
		}
		indices = append(indices, m.Triangles[r.Start:r.Start+r.Count]...)
	}
	if err := checkIndices(indices, len(m.Vertices)); err != nil {
		return nil, err
	}

	v := &View{mesh: m, indices: indices}
	v.bounds = v.referencedBounds()
	return v, nil
}

// referencedBounds returns the bounds of the vertices the view's triangles
// reference.
func (v *View) referencedBounds() sdf.Box3 {
	lo := v.mesh.Vertices[v.indices[0]]
	hi := lo
	for _, idx := range v.indices[1:] {
		p := v.mesh.Vertices[idx]
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Bounds returns the union of the included regions' bounds, or the whole
// mesh bounds when no region filter was given.
func (v *View) Bounds() sdf.Box3 {
	return v.bounds
}

// TriangleCount returns the number of triangles in the view.
func (v *View) TriangleCount() int {
	return len(v.indices) / 3
}

// Indices returns the source vertex indices of triangle i.
func (v *View) Indices(i int) [3]int {
	return [3]int{v.indices[i*3], v.indices[i*3+1], v.indices[i*3+2]}
}

// Triangle returns the corner positions of triangle i.
func (v *View) Triangle(i int) [3]v3.Vec {
	vs := v.mesh.Vertices
	return [3]v3.Vec{vs[v.indices[i*3]], vs[v.indices[i*3+1]], vs[v.indices[i*3+2]]}
}

// Vertex returns source vertex idx.
func (v *View) Vertex(idx int) v3.Vec {
	return v.mesh.Vertices[idx]
}

// TriangleBounds returns the axis-aligned bounds of triangle i.
func (v *View) TriangleBounds(i int) sdf.Box3 {
	t := v.Triangle(i)
	return sdf.Box3{
		Min: t[0].Min(t[1]).Min(t[2]),
		Max: t[0].Max(t[1]).Max(t[2]),
	}
}
