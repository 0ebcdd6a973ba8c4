package poisson

import (
	"context"
	"math"
	"testing"

	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/chazu/colliderbake/pkg/mesh/meshtest"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func view(t *testing.T, m *mesh.Mesh) *mesh.View {
	t.Helper()
	v, err := mesh.NewView(m)
	require.NoError(t, err)
	return v
}

func TestBuildCDF(t *testing.T) {
	cdf, total := BuildCDF(view(t, meshtest.AreaRatio()))
	assert.InDelta(t, 2.0, total, 1e-12)
	require.Len(t, cdf, 2)
	assert.InDelta(t, 0.25, cdf[0], 1e-12)
	assert.InDelta(t, 1.0, cdf[1], 1e-12)
}

func TestPickTriangle(t *testing.T) {
	cdf := []float64{0.25, 0.25, 0.6, 1}
	tests := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{0.1, 0},
		{0.25, 0},
		{0.3, 2},
		{0.6, 2},
		{0.99, 3},
		{1, 3},
		{1.5, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PickTriangle(cdf, tt.u), "u=%g", tt.u)
	}
}

func TestSampleAreaWeighted(t *testing.T) {
	const n = 20000
	res, err := Sample(context.Background(), view(t, meshtest.AreaRatio()),
		Params{TargetCount: n, MaxAttempts: n}, NewSource(42))
	require.NoError(t, err)
	require.Len(t, res.Points, n)

	obs := make([]float64, 2)
	for _, ti := range res.SourceTriangles {
		obs[ti]++
	}
	exp := []float64{n * 0.25, n * 0.75}
	chi := stat.ChiSquare(obs, exp)
	limit := distuv.ChiSquared{K: 1}.Quantile(0.999)
	assert.Less(t, chi, limit, "observed %v expected %v", obs, exp)
}

func TestSamplePointsInsideTriangle(t *testing.T) {
	res, err := Sample(context.Background(), view(t, meshtest.Equilateral(1)),
		Params{TargetCount: 500, MaxAttempts: 500}, NewSource(3))
	require.NoError(t, err)
	require.Len(t, res.Points, 500)

	h := math.Sqrt(3) / 2
	for _, p := range res.Points {
		assert.Zero(t, p.Z)
		assert.GreaterOrEqual(t, p.Y, -1e-12)
		// Left and right edges of the triangle.
		assert.LessOrEqual(t, p.Y, 2*h*p.X+1e-9)
		assert.LessOrEqual(t, p.Y, 2*h*(1-p.X)+1e-9)
	}
}

func TestSampleSingleTriangleLargeRadius(t *testing.T) {
	res, err := Sample(context.Background(), view(t, meshtest.Equilateral(1)),
		Params{Radius: 10, TargetCount: 5, MaxAttempts: 1000}, NewSource(1))
	require.NoError(t, err)
	assert.Len(t, res.Points, 1)
	assert.Equal(t, 1000, res.Attempts)
	assert.Equal(t, 5, res.Requested)
}

func TestSampleSingleTargetSmallRadius(t *testing.T) {
	res, err := Sample(context.Background(), view(t, meshtest.Equilateral(1)),
		Params{Radius: 0.1, TargetCount: 1, MaxAttempts: 1000}, NewSource(11))
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []int{0}, res.SourceTriangles)

	// Barycentric coordinates against (0,0), (1,0), (1/2, h).
	p := res.Points[0]
	h := math.Sqrt(3) / 2
	c := p.Y / h
	b := p.X - c/2
	a := 1 - b - c
	assert.InDelta(t, 0, p.Z, 1e-12)
	for name, w := range map[string]float64{"a": a, "b": b, "c": c} {
		assert.GreaterOrEqual(t, w, -1e-9, name)
		assert.LessOrEqual(t, w, 1+1e-9, name)
	}
}

func pairsCloserThan(res Result, r float64, sameTriangle bool) int {
	n := 0
	for i := range res.Points {
		for j := i + 1; j < len(res.Points); j++ {
			if sameTriangle && res.SourceTriangles[i] != res.SourceTriangles[j] {
				continue
			}
			if res.Points[i].Sub(res.Points[j]).Length() < r {
				n++
			}
		}
	}
	return n
}

func TestSampleSameTriangleSpacing(t *testing.T) {
	v := view(t, meshtest.Square(1))
	p := Params{Radius: 0.2, TargetCount: 200, MaxAttempts: 5000}

	res, err := Sample(context.Background(), v, p, NewSource(9))
	require.NoError(t, err)
	require.NotEmpty(t, res.Points)
	assert.Less(t, len(res.Points), 200)
	assert.Zero(t, pairsCloserThan(res, p.Radius, true))

	p.StrictSpacing = true
	strict, err := Sample(context.Background(), v, p, NewSource(9))
	require.NoError(t, err)
	assert.Zero(t, pairsCloserThan(strict, p.Radius, false))
}

func TestSampleAutoCoverage(t *testing.T) {
	p := Params{
		Radius:                5,
		TargetCount:           100,
		MaxAttempts:           10,
		InsetDistance:         1,
		ColliderRadius:        1,
		AutoCoverage:          true,
		ColliderToSampleRatio: 2,
		InsetFraction:         0.2,
		CoverageFraction:      1,
	}
	res, err := Sample(context.Background(), view(t, meshtest.Square(2)), p, NewSource(5))
	require.NoError(t, err)

	r := math.Sqrt(4.0 / 100 / math.Pi)
	assert.InDelta(t, r, res.Radius, 1e-12)
	assert.InDelta(t, r/2, res.ColliderRadius, 1e-12)
	assert.InDelta(t, r*0.2, res.InsetDistance, 1e-12)
	assert.InDelta(t, 4.0, res.SurfaceArea, 1e-12)
	// Caller's params are untouched.
	assert.Equal(t, 5.0, p.Radius)
}

func TestSampleInsetAgainstNormal(t *testing.T) {
	res, err := Sample(context.Background(), view(t, meshtest.Equilateral(1)),
		Params{TargetCount: 20, MaxAttempts: 20, InsetDistance: 0.1}, NewSource(4))
	require.NoError(t, err)
	require.Len(t, res.Points, 20)

	// The unnormalized normal of the unit equilateral triangle is
	// (0, 0, sqrt(3)/2).
	want := -0.1 * math.Sqrt(3) / 2
	for _, p := range res.Points {
		assert.InDelta(t, want, p.Z, 1e-12)
	}
}

func TestSampleDeterministic(t *testing.T) {
	v := view(t, meshtest.UnitCube())
	p := Params{Radius: 0.1, TargetCount: 50, MaxAttempts: 2000}

	a, err := Sample(context.Background(), v, p, NewSource(77))
	require.NoError(t, err)
	b, err := Sample(context.Background(), v, p, NewSource(77))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSampleErrors(t *testing.T) {
	degenerate := &mesh.Mesh{
		Vertices:  []v3.Vec{{X: 0}, {X: 1}, {X: 2}},
		Triangles: []int{0, 1, 2},
	}
	ok := Params{TargetCount: 1, MaxAttempts: 1}

	_, err := Sample(context.Background(), nil, ok, NewSource(1))
	assert.ErrorIs(t, err, mesh.ErrInvalidMesh)

	res, err := Sample(context.Background(), view(t, degenerate), ok, NewSource(1))
	assert.ErrorIs(t, err, ErrDegenerateSurface)
	assert.Empty(t, res.Points)

	_, err = Sample(context.Background(), view(t, meshtest.UnitCube()), Params{MaxAttempts: 1}, NewSource(1))
	assert.ErrorIs(t, err, ErrInvalidParams)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Sample(ctx, view(t, meshtest.UnitCube()), ok, NewSource(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampleZeroAttempts(t *testing.T) {
	res, err := Sample(context.Background(), view(t, meshtest.UnitCube()),
		Params{TargetCount: 10}, NewSource(1))
	require.NoError(t, err)
	assert.Empty(t, res.Points)
	assert.Zero(t, res.Attempts)
}
