package voxel

import (
	"github.com/chazu/colliderbake/pkg/grid"
	"github.com/chazu/colliderbake/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MergeOptions shapes the boxes emitted from a field.
type MergeOptions struct {
	// SizeMultiplier scales box extents; centers stay on the grid. Zero is
	// treated as 1.
	SizeMultiplier float64
	// MaxBoxes stops emission once reached. Zero or negative means no cap.
	MaxBoxes int
}

func (o MergeOptions) multiplier() float64 {
	if o.SizeMultiplier == 0 {
		return 1
	}
	return o.SizeMultiplier
}

func (o MergeOptions) full(n int) bool {
	return o.MaxBoxes > 0 && n >= o.MaxBoxes
}

// blockBox returns the box covering dx*dy*dz cells starting at cell (x,y,z).
func blockBox(spec grid.Spec, x, y, z, dx, dy, dz int, mult float64) primitive.Box {
	size := v3.Vec{
		X: float64(dx) * spec.CellSize.X,
		Y: float64(dy) * spec.CellSize.Y,
		Z: float64(dz) * spec.CellSize.Z,
	}
	center := v3.Vec{
		X: spec.Origin.X + (float64(x)+float64(dx)*0.5)*spec.CellSize.X,
		Y: spec.Origin.Y + (float64(y)+float64(dy)*0.5)*spec.CellSize.Y,
		Z: spec.Origin.Z + (float64(z)+float64(dz)*0.5)*spec.CellSize.Z,
	}
	return primitive.Box{Center: center, Size: size.MulScalar(mult)}
}

// Cells emits one box per occupied cell in x, y, z order. The second result
// is true if MaxBoxes cut the output short.
func Cells(field *Field, spec grid.Spec, opts MergeOptions) ([]primitive.Box, bool) {
	n := field.Counts()
	mult := opts.multiplier()

	var boxes []primitive.Box
	for x := 0; x < n.X; x++ {
		for y := 0; y < n.Y; y++ {
			for z := 0; z < n.Z; z++ {
				if !field.At(x, y, z) {
					continue
				}
				if opts.full(len(boxes)) {
					return boxes, true
				}
				boxes = append(boxes, blockBox(spec, x, y, z, 1, 1, 1, mult))
			}
		}
	}
	return boxes, false
}

// Merge greedily grows boxes over occupied cells. From each unvisited
// occupied cell, visited in x, y, z order, it extends along X, then along Y
// while the whole X run is free, then along Z while the whole X-Y footprint
// is free. Without a cap every occupied cell ends up in exactly one box. The
// second result is true if MaxBoxes cut the output short.
func Merge(field *Field, spec grid.Spec, opts MergeOptions) ([]primitive.Box, bool) {
	n := field.Counts()
	mult := opts.multiplier()
	visited := NewField(n)

	free := func(x, y, z int) bool {
		return field.At(x, y, z) && !visited.At(x, y, z)
	}
	rowFree := func(x0, y, z, dx int) bool {
		for x := x0; x < x0+dx; x++ {
			if !free(x, y, z) {
				return false
			}
		}
		return true
	}
	slabFree := func(x0, y0, z, dx, dy int) bool {
		for y := y0; y < y0+dy; y++ {
			if !rowFree(x0, y, z, dx) {
				return false
			}
		}
		return true
	}

	var boxes []primitive.Box
	for x := 0; x < n.X; x++ {
		for y := 0; y < n.Y; y++ {
			for z := 0; z < n.Z; z++ {
				if !free(x, y, z) {
					continue
				}
				if opts.full(len(boxes)) {
					return boxes, true
				}

				dx := 1
				for x+dx < n.X && free(x+dx, y, z) {
					dx++
				}
				dy := 1
				for y+dy < n.Y && rowFree(x, y+dy, z, dx) {
					dy++
				}
				dz := 1
				for z+dz < n.Z && slabFree(x, y, z+dz, dx, dy) {
					dz++
				}

				for ix := x; ix < x+dx; ix++ {
					for iy := y; iy < y+dy; iy++ {
						for iz := z; iz < z+dz; iz++ {
							visited.Set(ix, iy, iz, true)
						}
					}
				}
				boxes = append(boxes, blockBox(spec, x, y, z, dx, dy, dz, mult))
			}
		}
	}
	return boxes, false
}
