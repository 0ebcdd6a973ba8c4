// Package grid derives the regular 3D cell grids that voxelization and
// bucketing run over.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MinCellSize is the floor applied to every cell dimension (and to every
// world scale factor) so that collapsed axes never divide by zero.
const MinCellSize = 1e-8

// MaxCells is the largest total cell count a grid may have before
// voxelization or bucketing will run over it.
const MaxCells = 1 << 24

// maxAxisCount caps a single axis so the float to int conversion stays
// defined for huge or non-finite size/cell ratios.
const maxAxisCount = math.MaxInt32

// ErrTooManyCells is returned by Check for grids above the cell limit.
var ErrTooManyCells = errors.New("grid has too many cells")

// Cell addresses one grid cell.
type Cell struct {
	X, Y, Z int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Less orders cells x-major, then y, then z.
func (c Cell) Less(o Cell) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// Spec is a regular grid anchored at Origin. Every CellSize component is at
// least MinCellSize and every Counts component is at least 1.
type Spec struct {
	Origin   v3.Vec
	CellSize v3.Vec
	Counts   Cell
}

// FromCellSize builds a grid over bounds expanded by padding on every side,
// with cells of the given size. Counts are ceil(size/cellSize), at least 1.
func FromCellSize(bounds sdf.Box3, cellSize, padding v3.Vec) Spec {
	b := pad(bounds, padding)
	cs := clampSize(cellSize)
	size := b.Size()
	return Spec{
		Origin:   b.Min,
		CellSize: cs,
		Counts: Cell{
			X: ceilCount(size.X, cs.X),
			Y: ceilCount(size.Y, cs.Y),
			Z: ceilCount(size.Z, cs.Z),
		},
	}
}

// FromCellCount builds a grid over bounds expanded by padding on every side,
// with n cells along every axis. n below 1 is treated as 1.
func FromCellCount(bounds sdf.Box3, n int, padding v3.Vec) Spec {
	if n < 1 {
		n = 1
	}
	b := pad(bounds, padding)
	return Spec{
		Origin:   b.Min,
		CellSize: clampSize(b.Size().DivScalar(float64(n))),
		Counts:   Cell{X: n, Y: n, Z: n},
	}
}

func pad(b sdf.Box3, padding v3.Vec) sdf.Box3 {
	return sdf.Box3{Min: b.Min.Sub(padding), Max: b.Max.Add(padding)}
}

func clampSize(s v3.Vec) v3.Vec {
	return v3.Vec{
		X: math.Max(MinCellSize, s.X),
		Y: math.Max(MinCellSize, s.Y),
		Z: math.Max(MinCellSize, s.Z),
	}
}

func ceilCount(size, cell float64) int {
	f := math.Ceil(size / cell)
	if !(f < maxAxisCount) {
		return maxAxisCount
	}
	if f < 1 {
		return 1
	}
	return int(f)
}

// WorldToLocal converts a world-space length into per-axis local lengths for
// an object with the given world scale. Scale components are taken by
// magnitude and floored at MinCellSize.
func WorldToLocal(world float64, scale v3.Vec) v3.Vec {
	return v3.Vec{
		X: world / math.Max(MinCellSize, math.Abs(scale.X)),
		Y: world / math.Max(MinCellSize, math.Abs(scale.Y)),
		Z: world / math.Max(MinCellSize, math.Abs(scale.Z)),
	}
}

// CellCount returns the total number of cells. Call Check first on grids
// built from untrusted sizes; the product can overflow.
func (s Spec) CellCount() int {
	return s.Counts.X * s.Counts.Y * s.Counts.Z
}

// Check returns ErrTooManyCells when the grid holds more than limit cells.
// The product is computed without overflow.
func (s Spec) Check(limit int) error {
	counts := [3]int{s.Counts.X, s.Counts.Y, s.Counts.Z}
	for _, c := range counts {
		if c < 1 {
			return nil
		}
	}
	n := 1
	for _, c := range counts {
		if c > limit/n {
			return fmt.Errorf("%w: %d x %d x %d exceeds %d",
				ErrTooManyCells, s.Counts.X, s.Counts.Y, s.Counts.Z, limit)
		}
		n *= c
	}
	return nil
}

// Bounds returns the region covered by the grid.
func (s Spec) Bounds() sdf.Box3 {
	extent := v3.Vec{
		X: float64(s.Counts.X) * s.CellSize.X,
		Y: float64(s.Counts.Y) * s.CellSize.Y,
		Z: float64(s.Counts.Z) * s.CellSize.Z,
	}
	return sdf.Box3{Min: s.Origin, Max: s.Origin.Add(extent)}
}

// CellIndex maps coordinate p on axis (0=X, 1=Y, 2=Z) to the index of the
// cell containing it. The result is not clamped; see Clamp.
func (s Spec) CellIndex(p float64, axis int) int {
	o, c := Axis(s.Origin, axis), Axis(s.CellSize, axis)
	return int(math.Floor((p - o) / c))
}

// Clamp clamps a cell index on axis into [0, count-1].
func (s Spec) Clamp(axis, i int) int {
	n := s.Counts.Axis(axis)
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// CellOf returns the cell containing p, clamped into the grid. Points
// marginally outside the grid land in the nearest boundary cell.
func (s Spec) CellOf(p v3.Vec) Cell {
	return Cell{
		X: s.Clamp(0, s.CellIndex(p.X, 0)),
		Y: s.Clamp(1, s.CellIndex(p.Y, 1)),
		Z: s.Clamp(2, s.CellIndex(p.Z, 2)),
	}
}

// CellCenter returns the world position of the center of c.
func (s Spec) CellCenter(c Cell) v3.Vec {
	return v3.Vec{
		X: s.Origin.X + (float64(c.X)+0.5)*s.CellSize.X,
		Y: s.Origin.Y + (float64(c.Y)+0.5)*s.CellSize.Y,
		Z: s.Origin.Z + (float64(c.Z)+0.5)*s.CellSize.Z,
	}
}

// Index flattens c into [0, CellCount()) with z varying fastest.
func (s Spec) Index(c Cell) int {
	return (c.X*s.Counts.Y+c.Y)*s.Counts.Z + c.Z
}

func (s Spec) String() string {
	return fmt.Sprintf("grid %dx%dx%d cell=(%.4g,%.4g,%.4g) origin=(%.4g,%.4g,%.4g)",
		s.Counts.X, s.Counts.Y, s.Counts.Z,
		s.CellSize.X, s.CellSize.Y, s.CellSize.Z,
		s.Origin.X, s.Origin.Y, s.Origin.Z)
}

// Axis returns component axis (0=X, 1=Y, 2=Z) of v.
func Axis(v v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Axis returns component axis (0=X, 1=Y, 2=Z) of c.
func (c Cell) Axis(axis int) int {
	switch axis {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}
