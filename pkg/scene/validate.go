package scene

import "fmt"

// ValidationSeverity distinguishes blocking problems from advice.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ValidationError describes a problem found in a scene.
type ValidationError struct {
	Part     string // which part has the problem (empty if scene-level)
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] part %q: %s", e.Severity, e.Part, e.Message)
}

// ValidationWarning is advisory and never blocks tessellation.
type ValidationWarning struct {
	Part    string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("part %q: %s", w.Part, w.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result has no errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks part names and every node's shape. An empty result means
// the scene can be tessellated.
func (s *Scene) Validate() ValidationResult {
	var res ValidationResult
	if s == nil || len(s.Parts) == 0 {
		res.Errors = append(res.Errors, ValidationError{
			Message:  "scene has no parts",
			Severity: SeverityError,
		})
		return res
	}

	seen := make(map[string]bool, len(s.Parts))
	for _, p := range s.Parts {
		switch {
		case p.Name == "":
			res.Errors = append(res.Errors, ValidationError{Message: "part has no name", Severity: SeverityError})
		case seen[p.Name]:
			res.Errors = append(res.Errors, ValidationError{Part: p.Name, Message: "duplicate part name", Severity: SeverityError})
		}
		seen[p.Name] = true

		if p.Root == nil {
			res.Errors = append(res.Errors, ValidationError{Part: p.Name, Message: "part has no solid", Severity: SeverityError})
			continue
		}
		p.Root.Walk(func(n *Node) bool {
			validateNode(p.Name, n, &res)
			return true
		})
	}
	return res
}

func validateNode(part string, n *Node, res *ValidationResult) {
	fail := func(format string, args ...any) {
		res.Errors = append(res.Errors, ValidationError{
			Part:     part,
			Message:  n.Kind.String() + ": " + fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}
	warn := func(format string, args ...any) {
		res.Warnings = append(res.Warnings, ValidationWarning{
			Part:    part,
			Message: n.Kind.String() + ": " + fmt.Sprintf(format, args...),
		})
	}

	switch n.Kind {
	case NodeBox:
		d, ok := n.Data.(BoxData)
		if !ok {
			fail("unexpected data %T", n.Data)
			return
		}
		if d.Size.X <= 0 || d.Size.Y <= 0 || d.Size.Z <= 0 {
			fail("size must be positive, got (%g, %g, %g)", d.Size.X, d.Size.Y, d.Size.Z)
		}
	case NodeSphere:
		d, ok := n.Data.(SphereData)
		if !ok {
			fail("unexpected data %T", n.Data)
			return
		}
		if d.Radius <= 0 {
			fail("radius must be positive, got %g", d.Radius)
		}
	case NodeCylinder:
		d, ok := n.Data.(CylinderData)
		if !ok {
			fail("unexpected data %T", n.Data)
			return
		}
		if d.Height <= 0 || d.Radius <= 0 {
			fail("height and radius must be positive, got %g and %g", d.Height, d.Radius)
		}
	case NodeUnion, NodeDifference, NodeIntersection:
		switch len(n.Children) {
		case 0:
			fail("needs at least one solid")
		case 1:
			warn("has a single solid")
		}
	case NodeTranslate, NodeRotate:
		d, ok := n.Data.(TransformData)
		if !ok {
			fail("unexpected data %T", n.Data)
			return
		}
		if len(n.Children) != 1 {
			fail("needs exactly one solid, got %d", len(n.Children))
		}
		if d.Vector.X == 0 && d.Vector.Y == 0 && d.Vector.Z == 0 {
			warn("has no effect")
		}
	default:
		fail("unknown node kind %d", int(n.Kind))
	}

	if n.Kind.IsPrimitive() && len(n.Children) > 0 {
		fail("primitive cannot have children")
	}
	for _, c := range n.Children {
		if c == nil {
			fail("nil child")
		}
	}
}
