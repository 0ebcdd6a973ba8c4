// Package decompose splits a mesh into coarse triangle-soup fragments by
// bucketing triangles into grid cells. No hulls are computed and triangles
// are never clipped: a triangle whose bounds overlap several cells is copied
// whole into each of them.
package decompose

import (
	"context"
	"fmt"
	"sort"

	"github.com/chazu/colliderbake/pkg/grid"
	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/chazu/colliderbake/pkg/primitive"
	"github.com/deadsy/sdfx/sdf"
)

// Bucket is the list of view triangle indices assigned to one cell.
type Bucket struct {
	Cell      grid.Cell
	Triangles []int
}

// Bucketize assigns every triangle of the view to each cell its bounding
// box overlaps, after clamping the box to the grid. Buckets come back in
// x, y, z cell order; empty cells are omitted. Grids above grid.MaxCells
// are rejected with grid.ErrTooManyCells, and the context is checked for
// every triangle and every x column a triangle spans.
func Bucketize(ctx context.Context, view *mesh.View, spec grid.Spec) ([]Bucket, error) {
	if err := spec.Check(grid.MaxCells); err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	gb := spec.Bounds()
	byCell := make(map[grid.Cell][]int)

	for ti, n := 0, view.TriangleCount(); ti < n; ti++ {
		tb := view.TriangleBounds(ti)
		tb = sdf.Box3{Min: tb.Min.Max(gb.Min), Max: tb.Max.Min(gb.Max)}

		lo := spec.CellOf(tb.Min)
		hi := spec.CellOf(tb.Max)
		for x := lo.X; x <= hi.X; x++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					c := grid.Cell{X: x, Y: y, Z: z}
					byCell[c] = append(byCell[c], ti)
				}
			}
		}
	}

	buckets := make([]Bucket, 0, len(byCell))
	for c, tris := range byCell {
		buckets = append(buckets, Bucket{Cell: c, Triangles: tris})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Cell.Less(buckets[j].Cell)
	})
	return buckets, nil
}

// Options bounds fragment extraction.
type Options struct {
	// MinTriangles drops buckets with fewer triangles.
	MinTriangles int
	// WarnTriangles flags buckets with more triangles. Zero or negative
	// disables the check.
	WarnTriangles int
	// MaxFragments stops extraction once reached. Zero or negative means no
	// cap.
	MaxFragments int
}

// Dense records a bucket above Options.WarnTriangles. It is advisory: the
// bucket's fragment is still emitted.
type Dense struct {
	Cell      grid.Cell
	Triangles int
}

// Result is the outcome of Fragments.
type Result struct {
	Fragments []primitive.TriangleSoup
	Cells     []grid.Cell // cell of each fragment
	Dense     []Dense
	Skipped   int  // buckets below MinTriangles
	Buckets   int  // non-empty buckets considered
	Truncated bool // MaxFragments cut the output short
}

// Fragments buckets the view's triangles and builds one deduplicated
// triangle soup per bucket that meets MinTriangles. A nil view yields
// ErrInvalidMesh and an empty result. The context is checked while
// bucketing and between buckets.
func Fragments(ctx context.Context, view *mesh.View, spec grid.Spec, opts Options) (Result, error) {
	if view == nil || view.TriangleCount() == 0 {
		return Result{}, fmt.Errorf("decompose: %w: no triangles", mesh.ErrInvalidMesh)
	}

	buckets, err := Bucketize(ctx, view, spec)
	if err != nil {
		return Result{}, err
	}
	res := Result{Buckets: len(buckets)}
	for _, b := range buckets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if len(b.Triangles) < opts.MinTriangles {
			res.Skipped++
			continue
		}
		if opts.MaxFragments > 0 && len(res.Fragments) >= opts.MaxFragments {
			res.Truncated = true
			break
		}
		if opts.WarnTriangles > 0 && len(b.Triangles) > opts.WarnTriangles {
			res.Dense = append(res.Dense, Dense{Cell: b.Cell, Triangles: len(b.Triangles)})
		}
		res.Fragments = append(res.Fragments, Fragment(view, b.Triangles))
		res.Cells = append(res.Cells, b.Cell)
	}
	return res, nil
}

// Fragment copies the listed view triangles into a self-contained soup.
// Vertices are numbered in order of first use.
func Fragment(view *mesh.View, triangles []int) primitive.TriangleSoup {
	remap := make(map[int]int, len(triangles)*3)
	soup := primitive.TriangleSoup{
		Triangles: make([]int, 0, len(triangles)*3),
	}
	for _, ti := range triangles {
		for _, src := range view.Indices(ti) {
			dst, ok := remap[src]
			if !ok {
				dst = len(soup.Vertices)
				remap[src] = dst
				soup.Vertices = append(soup.Vertices, view.Vertex(src))
			}
			soup.Triangles = append(soup.Triangles, dst)
		}
	}
	return soup
}
