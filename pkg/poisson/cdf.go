package poisson

import (
	"sort"

	"github.com/chazu/colliderbake/pkg/mesh"
	"gonum.org/v1/gonum/floats"
)

// TriangleArea returns the area of triangle i of the view.
func TriangleArea(view *mesh.View, i int) float64 {
	t := view.Triangle(i)
	return 0.5 * t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Length()
}

// BuildCDF returns the normalized cumulative area distribution over the
// view's triangles and the total surface area. When the total is not
// positive the returned CDF holds raw cumulative areas.
func BuildCDF(view *mesh.View) (cdf []float64, total float64) {
	n := view.TriangleCount()
	areas := make([]float64, n)
	for i := range areas {
		areas[i] = TriangleArea(view, i)
	}
	cdf = floats.CumSum(make([]float64, n), areas)
	if n > 0 {
		total = cdf[n-1]
	}
	if total > 0 {
		floats.Scale(1/total, cdf)
	}
	return cdf, total
}

// PickTriangle returns the first index whose cumulative value is at least
// u, clamped to the last triangle.
func PickTriangle(cdf []float64, u float64) int {
	i := sort.SearchFloat64s(cdf, u)
	if i >= len(cdf) {
		i = len(cdf) - 1
	}
	return i
}
