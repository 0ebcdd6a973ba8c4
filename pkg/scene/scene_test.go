package scene

import (
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit() *Node {
	return Box(v3.Vec{X: 1, Y: 1, Z: 1})
}

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{NodeBox, "box"},
		{NodeSphere, "sphere"},
		{NodeCylinder, "cylinder"},
		{NodeUnion, "union"},
		{NodeDifference, "difference"},
		{NodeIntersection, "intersection"},
		{NodeTranslate, "translate"},
		{NodeRotate, "rotate"},
		{NodeKind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
	assert.True(t, NodeSphere.IsPrimitive())
	assert.False(t, NodeUnion.IsPrimitive())
	assert.True(t, NodeDifference.IsBoolean())
}

func TestSceneLookupAndCount(t *testing.T) {
	s := New()
	s.AddPart("body", Union(unit(), Translate(Sphere(1), v3.Vec{X: 2})))
	s.AddPart("wheel", Rotate(Cylinder(0.2, 1), v3.Vec{X: 90}))

	assert.Equal(t, []string{"body", "wheel"}, s.PartNames())
	assert.Equal(t, 6, s.NodeCount())
	require.NotNil(t, s.Lookup("wheel"))
	assert.Equal(t, NodeRotate, s.Lookup("wheel").Root.Kind)
	assert.Nil(t, s.Lookup("missing"))
}

func TestWalkStopsEarly(t *testing.T) {
	root := Union(unit(), Sphere(1), Cylinder(1, 1))
	var seen []NodeKind
	root.Walk(func(n *Node) bool {
		seen = append(seen, n.Kind)
		return n.Kind != NodeSphere
	})
	assert.Equal(t, []NodeKind{NodeUnion, NodeBox, NodeSphere}, seen)
}

func TestValidateOK(t *testing.T) {
	s := New()
	s.AddPart("body", Difference(unit(), Sphere(0.6)))
	res := s.Validate()
	assert.True(t, res.OK())
	assert.Empty(t, res.Warnings)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(s *Scene)
		want  string
	}{
		{"empty scene", func(s *Scene) {}, "no parts"},
		{"unnamed part", func(s *Scene) { s.AddPart("", unit()) }, "no name"},
		{"duplicate name", func(s *Scene) {
			s.AddPart("a", unit())
			s.AddPart("a", unit())
		}, "duplicate part name"},
		{"nil root", func(s *Scene) { s.AddPart("a", nil) }, "no solid"},
		{"flat box", func(s *Scene) { s.AddPart("a", Box(v3.Vec{X: 1, Y: 0, Z: 1})) }, "size must be positive"},
		{"negative radius", func(s *Scene) { s.AddPart("a", Sphere(-1)) }, "radius must be positive"},
		{"zero cylinder", func(s *Scene) { s.AddPart("a", Cylinder(0, 1)) }, "height and radius"},
		{"empty union", func(s *Scene) { s.AddPart("a", Union()) }, "at least one solid"},
		{"bad data", func(s *Scene) { s.AddPart("a", &Node{Kind: NodeBox, Data: SphereData{Radius: 1}}) }, "unexpected data"},
		{"primitive with child", func(s *Scene) {
			n := unit()
			n.Children = []*Node{unit()}
			s.AddPart("a", n)
		}, "cannot have children"},
		{"nil child", func(s *Scene) { s.AddPart("a", Union(unit(), nil)) }, "nil child"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.build(s)
			res := s.Validate()
			require.False(t, res.OK())
			found := false
			for _, e := range res.Errors {
				if strings.Contains(e.Error(), tt.want) {
					found = true
				}
			}
			assert.True(t, found, "errors %v do not mention %q", res.Errors, tt.want)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	s := New()
	s.AddPart("a", Union(Translate(unit(), v3.Vec{})))
	res := s.Validate()
	assert.True(t, res.OK())
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0].Message, "single solid")
	assert.Contains(t, res.Warnings[1].Message, "no effect")
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Part: "body", Message: "bad", Severity: SeverityError}
	assert.Equal(t, `[error] part "body": bad`, e.Error())
	e.Part = ""
	assert.Equal(t, "[error] bad", e.Error())
}

func TestNilSceneValidate(t *testing.T) {
	var s *Scene
	assert.False(t, s.Validate().OK())
}
