// Package primitive defines the collision primitive descriptions produced by
// every bake strategy. A primitive carries no identity beyond its position in
// the output sequence; attaching it to a physics body is the caller's job.
package primitive

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind distinguishes primitive variants.
type Kind int

const (
	KindBox Kind = iota
	KindSphere
	KindTriangleSoup
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindTriangleSoup:
		return "triangle_soup"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Primitive is the sealed union of Box, Sphere and TriangleSoup.
type Primitive interface {
	Kind() Kind
	primitive()
}

// Box is an axis-aligned box in the mesh's local space.
type Box struct {
	Center v3.Vec `json:"center"`
	Size   v3.Vec `json:"size"`
}

func (Box) Kind() Kind { return KindBox }
func (Box) primitive() {}

// Min returns the minimum corner.
func (b Box) Min() v3.Vec {
	return b.Center.Sub(b.Size.MulScalar(0.5))
}

// Max returns the maximum corner.
func (b Box) Max() v3.Vec {
	return b.Center.Add(b.Size.MulScalar(0.5))
}

// Sphere is a sphere in the mesh's local space.
type Sphere struct {
	Center v3.Vec  `json:"center"`
	Radius float64 `json:"radius"`
}

func (Sphere) Kind() Kind { return KindSphere }
func (Sphere) primitive() {}

// TriangleSoup is a self-contained indexed triangle fragment, suitable for a
// concave or convex mesh collider.
type TriangleSoup struct {
	Vertices  []v3.Vec `json:"vertices"`
	Triangles []int    `json:"triangles"`
}

func (TriangleSoup) Kind() Kind { return KindTriangleSoup }
func (TriangleSoup) primitive() {}

// TriangleCount returns the number of triangles in the fragment.
func (s TriangleSoup) TriangleCount() int {
	return len(s.Triangles) / 3
}

// Spheres turns sampled points into spheres of a shared radius.
func Spheres(points []v3.Vec, radius float64) []Primitive {
	out := make([]Primitive, len(points))
	for i, p := range points {
		out[i] = Sphere{Center: p, Radius: radius}
	}
	return out
}

// Boxes widens a box slice to primitives.
func Boxes(boxes []Box) []Primitive {
	out := make([]Primitive, len(boxes))
	for i, b := range boxes {
		out[i] = b
	}
	return out
}

// Count tallies primitives by kind.
func Count(ps []Primitive) map[Kind]int {
	counts := make(map[Kind]int)
	for _, p := range ps {
		counts[p.Kind()]++
	}
	return counts
}
