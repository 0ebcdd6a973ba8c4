package grid

import (
	"fmt"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: minX, Y: minY, Z: minZ},
		Max: v3.Vec{X: maxX, Y: maxY, Z: maxZ},
	}
}

func TestFromCellCount(t *testing.T) {
	bounds := []sdf.Box3{
		box(0, 0, 0, 2, 4, 6),
		box(-1, -1, -1, 1, 1, 1),
		box(3.5, -2, 0.25, 3.75, 9, 0.5),
	}
	for _, b := range bounds {
		for _, n := range []int{1, 2, 3, 7, 16} {
			t.Run(fmt.Sprintf("%v/n=%d", b.Size(), n), func(t *testing.T) {
				s := FromCellCount(b, n, v3.Vec{})
				assert.Equal(t, Cell{X: n, Y: n, Z: n}, s.Counts)
				want := b.Size().DivScalar(float64(n))
				assert.InDelta(t, want.X, s.CellSize.X, 1e-12)
				assert.InDelta(t, want.Y, s.CellSize.Y, 1e-12)
				assert.InDelta(t, want.Z, s.CellSize.Z, 1e-12)
				assert.Equal(t, b.Min, s.Origin)
			})
		}
	}
}

func TestFromCellCountBelowOne(t *testing.T) {
	s := FromCellCount(box(0, 0, 0, 1, 1, 1), 0, v3.Vec{})
	assert.Equal(t, Cell{X: 1, Y: 1, Z: 1}, s.Counts)
	assert.Equal(t, v3.Vec{X: 1, Y: 1, Z: 1}, s.CellSize)
}

func TestFromCellSize(t *testing.T) {
	s := FromCellSize(box(0, 0, 0, 1, 0.5, 0.25), v3.Vec{X: 0.3, Y: 0.3, Z: 0.3}, v3.Vec{})
	assert.Equal(t, Cell{X: 4, Y: 2, Z: 1}, s.Counts)
	assert.Equal(t, 8, s.CellCount())

	gb := s.Bounds()
	assert.InDelta(t, 1.2, gb.Max.X, 1e-12)
	assert.InDelta(t, 0.6, gb.Max.Y, 1e-12)
	assert.InDelta(t, 0.3, gb.Max.Z, 1e-12)
}

func TestPaddingExpandsBothSides(t *testing.T) {
	pad := v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}

	s := FromCellSize(box(0, 0, 0, 1, 1, 1), v3.Vec{X: 1, Y: 1, Z: 1}, pad)
	assert.Equal(t, v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, s.Origin)
	assert.Equal(t, Cell{X: 2, Y: 2, Z: 2}, s.Counts)

	c := FromCellCount(box(0, 0, 0, 1, 1, 1), 4, pad)
	assert.Equal(t, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, c.CellSize)
}

func TestDegenerateBounds(t *testing.T) {
	flat := box(1, 1, 1, 3, 1, 1) // zero extent on Y and Z

	s := FromCellSize(flat, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, v3.Vec{})
	assert.Equal(t, Cell{X: 4, Y: 1, Z: 1}, s.Counts)

	c := FromCellCount(flat, 3, v3.Vec{})
	assert.Equal(t, MinCellSize, c.CellSize.Y)
	assert.Equal(t, MinCellSize, c.CellSize.Z)
	assert.Equal(t, 0, c.CellIndex(1, 1))
	assert.Equal(t, 0, c.CellOf(v3.Vec{X: 1, Y: 1, Z: 1}).Y)
}

func TestZeroCellSizeIsClamped(t *testing.T) {
	s := FromCellSize(box(0, 0, 0, 1e-9, 1e-9, 1e-9), v3.Vec{}, v3.Vec{})
	assert.Equal(t, v3.Vec{X: MinCellSize, Y: MinCellSize, Z: MinCellSize}, s.CellSize)
	assert.Equal(t, Cell{X: 1, Y: 1, Z: 1}, s.Counts)
}

func TestCellIndexAndClamp(t *testing.T) {
	s := FromCellCount(box(0, 0, 0, 4, 4, 4), 4, v3.Vec{})

	tests := []struct {
		p       float64
		raw     int
		clamped int
	}{
		{0, 0, 0},
		{0.99, 0, 0},
		{1, 1, 1},
		{3.999, 3, 3},
		{4, 4, 3},
		{4.0000001, 4, 3},
		{-0.0001, -1, 0},
		{-10, -10, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.p), func(t *testing.T) {
			i := s.CellIndex(tt.p, 1)
			assert.Equal(t, tt.raw, i)
			assert.Equal(t, tt.clamped, s.Clamp(1, i))
		})
	}
}

func TestCellCenterAndIndex(t *testing.T) {
	s := FromCellCount(box(0, 0, 0, 2, 2, 2), 2, v3.Vec{})
	assert.Equal(t, v3.Vec{X: 0.5, Y: 1.5, Z: 0.5}, s.CellCenter(Cell{X: 0, Y: 1, Z: 0}))
	assert.Equal(t, Cell{X: 1, Y: 0, Z: 1}, s.CellOf(v3.Vec{X: 1.5, Y: 0.2, Z: 1.9}))

	seen := map[int]bool{}
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				seen[s.Index(Cell{X: x, Y: y, Z: z})] = true
			}
		}
	}
	assert.Len(t, seen, 8)
	assert.Equal(t, 7, s.Index(Cell{X: 1, Y: 1, Z: 1}))
}

func TestCellLess(t *testing.T) {
	assert.True(t, Cell{X: 0, Y: 5, Z: 5}.Less(Cell{X: 1}))
	assert.True(t, Cell{X: 1, Y: 0, Z: 9}.Less(Cell{X: 1, Y: 1}))
	assert.True(t, Cell{X: 1, Y: 1, Z: 0}.Less(Cell{X: 1, Y: 1, Z: 1}))
	assert.False(t, Cell{X: 1, Y: 1, Z: 1}.Less(Cell{X: 1, Y: 1, Z: 1}))
}

func TestWorldToLocal(t *testing.T) {
	l := WorldToLocal(1, v3.Vec{X: 2, Y: -4, Z: 0})
	assert.Equal(t, 0.5, l.X)
	assert.Equal(t, 0.25, l.Y)
	assert.Equal(t, 1/MinCellSize, l.Z)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		counts Cell
		limit  int
		ok     bool
	}{
		{"single", Cell{X: 1, Y: 1, Z: 1}, 1, true},
		{"at limit", Cell{X: 4, Y: 4, Z: 4}, 64, true},
		{"one over", Cell{X: 4, Y: 4, Z: 5}, 79, false},
		{"default limit", Cell{X: 256, Y: 256, Z: 256}, MaxCells, true},
		{"product overflows int", Cell{X: math.MaxInt32, Y: math.MaxInt32, Z: math.MaxInt32}, MaxCells, false},
		{"empty axis", Cell{X: 0, Y: math.MaxInt32, Z: math.MaxInt32}, MaxCells, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Spec{Counts: tt.counts}.Check(tt.limit)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrTooManyCells)
			}
		})
	}
}

func TestFromCellSizeHugeBoundsSaturates(t *testing.T) {
	s := FromCellSize(box(0, 0, 0, 1e18, 1, math.Inf(1)), v3.Vec{X: 1e-9, Y: 1, Z: 1}, v3.Vec{})
	assert.Equal(t, math.MaxInt32, s.Counts.X)
	assert.Equal(t, 1, s.Counts.Y)
	assert.Equal(t, math.MaxInt32, s.Counts.Z)
	assert.ErrorIs(t, s.Check(MaxCells), ErrTooManyCells)
}
