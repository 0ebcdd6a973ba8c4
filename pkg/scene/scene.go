// Package scene defines the solid scene produced by recipe evaluation: a
// list of named parts, each the root of a tree of primitive, boolean and
// transform nodes. Every part becomes one region of the tessellated mesh.
package scene

import v3 "github.com/deadsy/sdfx/vec/v3"

// NodeKind enumerates the node types of a part tree.
type NodeKind int

const (
	NodeBox NodeKind = iota
	NodeSphere
	NodeCylinder
	NodeUnion
	NodeDifference
	NodeIntersection
	NodeTranslate
	NodeRotate
)

func (k NodeKind) String() string {
	switch k {
	case NodeBox:
		return "box"
	case NodeSphere:
		return "sphere"
	case NodeCylinder:
		return "cylinder"
	case NodeUnion:
		return "union"
	case NodeDifference:
		return "difference"
	case NodeIntersection:
		return "intersection"
	case NodeTranslate:
		return "translate"
	case NodeRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether nodes of this kind are leaves.
func (k NodeKind) IsPrimitive() bool {
	return k == NodeBox || k == NodeSphere || k == NodeCylinder
}

// IsBoolean reports whether nodes of this kind combine their children.
func (k NodeKind) IsBoolean() bool {
	return k == NodeUnion || k == NodeDifference || k == NodeIntersection
}

// Node is one element of a part tree.
type Node struct {
	Kind     NodeKind
	Data     NodeData // nil for boolean nodes
	Children []*Node
}

// NodeData is the kind-specific payload of a node.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// BoxData is a box centered on the origin.
type BoxData struct {
	Size v3.Vec
}

func (BoxData) nodeData() {}

// SphereData is a sphere centered on the origin.
type SphereData struct {
	Radius float64
}

func (SphereData) nodeData() {}

// CylinderData is a Z-aligned cylinder centered on the origin.
type CylinderData struct {
	Height float64
	Radius float64
}

func (CylinderData) nodeData() {}

// TransformData is a translation offset or Euler rotation in degrees.
type TransformData struct {
	Vector v3.Vec
}

func (TransformData) nodeData() {}

// Box returns a box leaf.
func Box(size v3.Vec) *Node {
	return &Node{Kind: NodeBox, Data: BoxData{Size: size}}
}

// Sphere returns a sphere leaf.
func Sphere(radius float64) *Node {
	return &Node{Kind: NodeSphere, Data: SphereData{Radius: radius}}
}

// Cylinder returns a cylinder leaf.
func Cylinder(height, radius float64) *Node {
	return &Node{Kind: NodeCylinder, Data: CylinderData{Height: height, Radius: radius}}
}

// Union combines children.
func Union(children ...*Node) *Node {
	return &Node{Kind: NodeUnion, Children: children}
}

// Difference subtracts every later child from the first.
func Difference(children ...*Node) *Node {
	return &Node{Kind: NodeDifference, Children: children}
}

// Intersection keeps the volume common to all children.
func Intersection(children ...*Node) *Node {
	return &Node{Kind: NodeIntersection, Children: children}
}

// Translate moves child by offset.
func Translate(child *Node, offset v3.Vec) *Node {
	return &Node{Kind: NodeTranslate, Data: TransformData{Vector: offset}, Children: []*Node{child}}
}

// Rotate turns child by Euler angles in degrees.
func Rotate(child *Node, degrees v3.Vec) *Node {
	return &Node{Kind: NodeRotate, Data: TransformData{Vector: degrees}, Children: []*Node{child}}
}

// Walk visits n and its descendants depth first, stopping early when fn
// returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Part is a named solid.
type Part struct {
	Name string
	Root *Node
}

// Scene is the ordered list of parts built by one recipe evaluation. It is
// never mutated after evaluation; each evaluation produces a new scene.
type Scene struct {
	Parts []Part
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddPart appends a part. It does not check for duplicate names; Validate
// reports them.
func (s *Scene) AddPart(name string, root *Node) {
	s.Parts = append(s.Parts, Part{Name: name, Root: root})
}

// Lookup returns the part with the given name, or nil.
func (s *Scene) Lookup(name string) *Part {
	for i := range s.Parts {
		if s.Parts[i].Name == name {
			return &s.Parts[i]
		}
	}
	return nil
}

// PartNames returns part names in declaration order.
func (s *Scene) PartNames() []string {
	names := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		names[i] = p.Name
	}
	return names
}

// NodeCount returns the total number of nodes across all parts.
func (s *Scene) NodeCount() int {
	n := 0
	for _, p := range s.Parts {
		p.Root.Walk(func(*Node) bool { n++; return true })
	}
	return n
}
