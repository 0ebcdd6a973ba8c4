package primitive

import (
	"encoding/json"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// wire is the JSON form of a primitive: a kind tag plus the fields of the
// variant it names.
type wire struct {
	Kind      string       `json:"kind"`
	Center    *[3]float64  `json:"center,omitempty"`
	Size      *[3]float64  `json:"size,omitempty"`
	Radius    float64      `json:"radius,omitempty"`
	Vertices  [][3]float64 `json:"vertices,omitempty"`
	Triangles []int        `json:"triangles,omitempty"`
}

func arr(v v3.Vec) *[3]float64 {
	return &[3]float64{v.X, v.Y, v.Z}
}

func vec(a *[3]float64) v3.Vec {
	if a == nil {
		return v3.Vec{}
	}
	return v3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

func toWire(p Primitive) (wire, error) {
	switch v := p.(type) {
	case Box:
		return wire{Kind: KindBox.String(), Center: arr(v.Center), Size: arr(v.Size)}, nil
	case Sphere:
		return wire{Kind: KindSphere.String(), Center: arr(v.Center), Radius: v.Radius}, nil
	case TriangleSoup:
		w := wire{Kind: KindTriangleSoup.String(), Triangles: v.Triangles}
		w.Vertices = make([][3]float64, len(v.Vertices))
		for i, vv := range v.Vertices {
			w.Vertices[i] = [3]float64{vv.X, vv.Y, vv.Z}
		}
		return w, nil
	default:
		return wire{}, fmt.Errorf("primitive: unsupported type %T", p)
	}
}

func fromWire(w wire) (Primitive, error) {
	switch w.Kind {
	case KindBox.String():
		return Box{Center: vec(w.Center), Size: vec(w.Size)}, nil
	case KindSphere.String():
		return Sphere{Center: vec(w.Center), Radius: w.Radius}, nil
	case KindTriangleSoup.String():
		s := TriangleSoup{Triangles: w.Triangles, Vertices: make([]v3.Vec, len(w.Vertices))}
		for i := range w.Vertices {
			s.Vertices[i] = vec(&w.Vertices[i])
		}
		return s, nil
	default:
		return nil, fmt.Errorf("primitive: unknown kind %q", w.Kind)
	}
}

// Marshal encodes an ordered primitive list as a JSON array of tagged
// objects.
func Marshal(ps []Primitive) ([]byte, error) {
	ws := make([]wire, len(ps))
	for i, p := range ps {
		w, err := toWire(p)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		ws[i] = w
	}
	return json.Marshal(ws)
}

// Unmarshal decodes the output of Marshal.
func Unmarshal(data []byte) ([]Primitive, error) {
	var ws []wire
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("primitive: %w", err)
	}
	ps := make([]Primitive, len(ws))
	for i, w := range ws {
		p, err := fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		ps[i] = p
	}
	return ps, nil
}
