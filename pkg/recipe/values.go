package recipe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/colliderbake/pkg/bake"
	"github.com/chazu/colliderbake/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a scene node so solids can be nested and bound to
// variables.
type sexpSolid struct {
	node *scene.Node
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", s.node.Kind)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSettings wraps the settings built by (voxel ...), (decomposition ...)
// or (poisson ...).
type sexpSettings struct {
	settings bake.Settings
}

func (s *sexpSettings) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", s.settings.Strategy())
}
func (s *sexpSettings) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Keyword at end with no value: treat as a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// keywords returns the keyword names in sorted order.
func (a kwArgs) keywords() []string {
	names := make([]string, 0, len(a.kw))
	for k := range a.kw {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// bind stores every keyword argument into the matching field pointer.
// Supported pointer types are *float64, *int, *uint64 and *bool. Unknown
// keywords are an error.
func (a kwArgs) bind(form string, fields map[string]any) error {
	for _, name := range a.keywords() {
		v := a.kw[name]
		dst, ok := fields[name]
		if !ok {
			return fmt.Errorf("%s: unknown keyword :%s", form, name)
		}
		var err error
		switch p := dst.(type) {
		case *float64:
			*p, err = toFloat64(v)
		case *int:
			*p, err = toInt(v)
		case *uint64:
			var n int
			n, err = toInt(v)
			if err == nil && n < 0 {
				err = fmt.Errorf("expected non-negative integer, got %d", n)
			}
			*p = uint64(n)
		case *bool:
			*p, err = toBool(v)
		default:
			err = fmt.Errorf("unsupported field type %T", dst)
		}
		if err != nil {
			return fmt.Errorf("%s: %s: %w", form, name, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats must be whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true/false. A trailing keyword with no value (SexpNull)
// reads as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a scene node from a sexpSolid.
func toSolid(s zygo.Sexp) (*scene.Node, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.node, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toSolids extracts every argument as a solid.
func toSolids(form string, args []zygo.Sexp) ([]*scene.Node, error) {
	nodes := make([]*scene.Node, len(args))
	for i, a := range args {
		n, err := toSolid(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", form, i+1, err)
		}
		nodes[i] = n
	}
	return nodes, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toStrings extracts a list or array of strings.
func toStrings(s zygo.Sexp) ([]string, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		if out[i], err = toString(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}
