// Package tessellate turns a scene into a single triangle mesh using a
// geometry kernel. Each part becomes one mesh region, named after the
// part and in declaration order.
package tessellate

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/colliderbake/pkg/kernel"
	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/chazu/colliderbake/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidScene is returned when scene validation reports errors.
var ErrInvalidScene = errors.New("invalid scene")

// Options controls tessellation.
type Options struct {
	// Workers tessellates up to this many parts at once. Zero or one is
	// sequential.
	Workers int
}

// Solid builds the kernel solid for a node tree.
func Solid(k kernel.Kernel, n *scene.Node) (kernel.Solid, error) {
	switch n.Kind {
	case scene.NodeBox:
		return k.Box(n.Data.(scene.BoxData).Size)
	case scene.NodeSphere:
		return k.Sphere(n.Data.(scene.SphereData).Radius)
	case scene.NodeCylinder:
		d := n.Data.(scene.CylinderData)
		return k.Cylinder(d.Height, d.Radius)

	case scene.NodeUnion, scene.NodeDifference, scene.NodeIntersection:
		children, err := solids(k, n.Children)
		if err != nil {
			return nil, err
		}
		switch n.Kind {
		case scene.NodeUnion:
			return k.Union(children[0], children[1:]...), nil
		case scene.NodeDifference:
			return k.Difference(children[0], children[1:]...), nil
		default:
			return k.Intersection(children[0], children[1:]...), nil
		}

	case scene.NodeTranslate, scene.NodeRotate:
		child, err := Solid(k, n.Children[0])
		if err != nil {
			return nil, err
		}
		v := n.Data.(scene.TransformData).Vector
		if n.Kind == scene.NodeTranslate {
			return k.Translate(child, v), nil
		}
		return k.Rotate(child, v), nil

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func solids(k kernel.Kernel, nodes []*scene.Node) ([]kernel.Solid, error) {
	out := make([]kernel.Solid, len(nodes))
	for i, c := range nodes {
		s, err := Solid(k, c)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Tessellate validates the scene, meshes every part and concatenates the
// results into one mesh with a region per part. The scene is never
// mutated.
func Tessellate(ctx context.Context, s *scene.Scene, k kernel.Kernel, opts Options) (*mesh.Mesh, error) {
	vr := s.Validate()
	if !vr.OK() {
		return nil, fmt.Errorf("tessellate: %w: %v", ErrInvalidScene, vr.Errors[0])
	}

	parts := make([]*mesh.Mesh, len(s.Parts))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 1 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}
	for i, p := range s.Parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			solid, err := Solid(k, p.Root)
			if err != nil {
				return fmt.Errorf("tessellate: part %q: %w", p.Name, err)
			}
			m, err := k.ToMesh(solid)
			if err != nil {
				return fmt.Errorf("tessellate: ToMesh failed for part %q: %w", p.Name, err)
			}
			parts[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Combine(s.PartNames(), parts), nil
}

// Combine concatenates meshes into one, offsetting indices and recording
// one region per input named by names.
func Combine(names []string, parts []*mesh.Mesh) *mesh.Mesh {
	out := &mesh.Mesh{}
	for i, p := range parts {
		base := len(out.Vertices)
		start := len(out.Triangles)
		out.Vertices = append(out.Vertices, p.Vertices...)
		for _, idx := range p.Triangles {
			out.Triangles = append(out.Triangles, base+idx)
		}
		out.Regions = append(out.Regions, mesh.Region{
			Name:  names[i],
			Start: start,
			Count: len(p.Triangles),
		})
	}
	return out
}
