package bake

import (
	"fmt"

	"github.com/chazu/colliderbake/pkg/grid"
)

// WarningKind classifies an advisory finding.
type WarningKind int

const (
	// CapacityExceeded means a primitive cap stopped generation; the
	// result holds what was produced before it.
	CapacityExceeded WarningKind = iota
	// DensityWarning means a grid cell held more triangles than the
	// configured threshold. The cell's output is still emitted.
	DensityWarning
	// UnderSampled means the sampler stopped short of its target count.
	UnderSampled
)

func (k WarningKind) String() string {
	switch k {
	case CapacityExceeded:
		return "capacity_exceeded"
	case DensityWarning:
		return "density"
	case UnderSampled:
		return "under_sampled"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is an advisory finding attached to a successful result.
type Warning struct {
	Kind    WarningKind
	Message string
	Cell    grid.Cell // cell concerned, for density warnings
	Count   int       // cap, triangle count or points produced
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
}
