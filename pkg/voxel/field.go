// Package voxel classifies grid cells as inside or outside a mesh and merges
// occupied cells into boxes.
package voxel

import "github.com/chazu/colliderbake/pkg/grid"

// Field is a dense inside/outside flag per grid cell. It is scratch state
// owned by a single bake.
type Field struct {
	counts grid.Cell
	cells  []bool
}

// NewField returns an all-empty field with the given dimensions.
func NewField(counts grid.Cell) *Field {
	return &Field{counts: counts, cells: make([]bool, counts.X*counts.Y*counts.Z)}
}

// Counts returns the field dimensions.
func (f *Field) Counts() grid.Cell {
	return f.counts
}

func (f *Field) index(x, y, z int) int {
	return (x*f.counts.Y+y)*f.counts.Z + z
}

// At reports whether cell (x, y, z) is occupied.
func (f *Field) At(x, y, z int) bool {
	return f.cells[f.index(x, y, z)]
}

// Set marks cell (x, y, z).
func (f *Field) Set(x, y, z int, v bool) {
	f.cells[f.index(x, y, z)] = v
}

// Count returns the number of occupied cells.
func (f *Field) Count() int {
	n := 0
	for _, c := range f.cells {
		if c {
			n++
		}
	}
	return n
}

// Equal reports whether two fields have the same dimensions and contents.
func (f *Field) Equal(o *Field) bool {
	if f.counts != o.counts {
		return false
	}
	for i := range f.cells {
		if f.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}
