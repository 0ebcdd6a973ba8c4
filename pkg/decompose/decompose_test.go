package decompose

import (
	"context"
	"testing"

	"github.com/chazu/colliderbake/pkg/grid"
	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/chazu/colliderbake/pkg/mesh/meshtest"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cubeGrid splits the unit cube into 2x2x2 cells of edge 0.5. Each face of
// the cube then lands in the four cells on its side, so every cell holds
// the six triangles of the three faces meeting at its corner.
func cubeGrid(t *testing.T, regions ...int) (*mesh.View, grid.Spec) {
	t.Helper()
	v, err := mesh.NewView(meshtest.UnitCube(), regions...)
	require.NoError(t, err)
	return v, grid.FromCellCount(v.Bounds(), 2, v3.Vec{})
}

func TestBucketizeCube(t *testing.T) {
	v, spec := cubeGrid(t)
	buckets, err := Bucketize(context.Background(), v, spec)
	require.NoError(t, err)

	require.Len(t, buckets, 8)
	for _, b := range buckets {
		assert.Len(t, b.Triangles, 6, "cell %v", b.Cell)
	}
	assert.Equal(t, grid.Cell{}, buckets[0].Cell)
	assert.Equal(t, grid.Cell{X: 1, Y: 1, Z: 1}, buckets[7].Cell)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].Cell.Less(buckets[i].Cell))
	}
	// -X, -Y and -Z faces in view order.
	assert.Equal(t, []int{0, 1, 4, 5, 8, 9}, buckets[0].Triangles)
}

func TestBucketizeRegionFilter(t *testing.T) {
	v, spec := cubeGrid(t, 0)
	buckets, err := Bucketize(context.Background(), v, spec)
	require.NoError(t, err)

	require.Len(t, buckets, 8)
	for _, b := range buckets {
		assert.Len(t, b.Triangles, 2, "cell %v", b.Cell)
	}
}

func TestBucketizeClampsToGrid(t *testing.T) {
	v, err := mesh.NewView(meshtest.Equilateral(1))
	require.NoError(t, err)

	// The grid covers only the lower-left corner of the triangle.
	spec := grid.Spec{
		CellSize: v3.Vec{X: 0.25, Y: 0.25, Z: 0.25},
		Counts:   grid.Cell{X: 2, Y: 2, Z: 1},
	}
	buckets, err := Bucketize(context.Background(), v, spec)
	require.NoError(t, err)

	require.Len(t, buckets, 4)
	assert.Equal(t, grid.Cell{X: 1, Y: 1}, buckets[3].Cell)
}

func TestFragmentsCube(t *testing.T) {
	v, spec := cubeGrid(t)
	res, err := Fragments(context.Background(), v, spec, Options{MinTriangles: 4, WarnTriangles: 5000})
	require.NoError(t, err)

	require.Len(t, res.Fragments, 8)
	require.Len(t, res.Cells, 8)
	assert.Equal(t, 8, res.Buckets)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Dense)
	assert.False(t, res.Truncated)
	for _, f := range res.Fragments {
		assert.Equal(t, 6, f.TriangleCount())
		assert.Len(t, f.Vertices, 7)
		for _, idx := range f.Triangles {
			assert.Less(t, idx, len(f.Vertices))
		}
	}
}

func TestFragmentVertexOrder(t *testing.T) {
	v, spec := cubeGrid(t)
	buckets, err := Bucketize(context.Background(), v, spec)
	require.NoError(t, err)
	f := Fragment(v, buckets[0].Triangles)

	cube := meshtest.UnitCube()
	want := []v3.Vec{
		cube.Vertices[0], cube.Vertices[4], cube.Vertices[6], cube.Vertices[2],
		cube.Vertices[1], cube.Vertices[5], cube.Vertices[3],
	}
	assert.Equal(t, want, f.Vertices)
	assert.Equal(t, []int{0, 1, 2, 0, 2, 3, 0, 4, 5, 0, 5, 1, 0, 3, 6, 0, 6, 4}, f.Triangles)

	// Fragment triangles reproduce the source positions.
	for i := 0; i < f.TriangleCount(); i++ {
		src := v.Triangle(buckets[0].Triangles[i])
		for j := 0; j < 3; j++ {
			assert.Equal(t, src[j], f.Vertices[f.Triangles[3*i+j]])
		}
	}
}

func TestFragmentsThresholds(t *testing.T) {
	v, spec := cubeGrid(t)

	tests := []struct {
		name      string
		opts      Options
		fragments int
		skipped   int
		dense     int
		truncated bool
	}{
		{"all", Options{MinTriangles: 4}, 8, 0, 0, false},
		{"min above bucket size", Options{MinTriangles: 7}, 0, 8, 0, false},
		{"min equal to bucket size", Options{MinTriangles: 6}, 8, 0, 0, false},
		{"dense still emitted", Options{WarnTriangles: 5}, 8, 0, 8, false},
		{"warn equal to bucket size", Options{WarnTriangles: 6}, 8, 0, 0, false},
		{"capped", Options{MaxFragments: 3}, 3, 0, 0, true},
		{"cap equal to bucket count", Options{MaxFragments: 8}, 8, 0, 0, false},
		{"capped dense", Options{MaxFragments: 2, WarnTriangles: 1}, 2, 0, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Fragments(context.Background(), v, spec, tt.opts)
			require.NoError(t, err)
			assert.Len(t, res.Fragments, tt.fragments)
			assert.Equal(t, tt.skipped, res.Skipped)
			assert.Len(t, res.Dense, tt.dense)
			assert.Equal(t, tt.truncated, res.Truncated)
			for _, d := range res.Dense {
				assert.Equal(t, 6, d.Triangles)
			}
		})
	}
}

func TestFragmentsInvalid(t *testing.T) {
	_, spec := cubeGrid(t)
	res, err := Fragments(context.Background(), nil, spec, Options{})
	assert.ErrorIs(t, err, mesh.ErrInvalidMesh)
	assert.Empty(t, res.Fragments)
}

func TestFragmentsCanceled(t *testing.T) {
	v, spec := cubeGrid(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fragments(ctx, v, spec, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBucketizeCanceled(t *testing.T) {
	v, spec := cubeGrid(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Bucketize(ctx, v, spec)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBucketizeRejectsHugeGrid(t *testing.T) {
	v, err := mesh.NewView(meshtest.UnitCube())
	require.NoError(t, err)
	// Cell size at the floor: 1e8 cells per axis.
	spec := grid.FromCellSize(v.Bounds(), v3.Vec{}, v3.Vec{})

	_, err = Bucketize(context.Background(), v, spec)
	assert.ErrorIs(t, err, grid.ErrTooManyCells)

	res, err := Fragments(context.Background(), v, spec, Options{})
	assert.ErrorIs(t, err, grid.ErrTooManyCells)
	assert.Empty(t, res.Fragments)
}
