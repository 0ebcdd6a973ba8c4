package bake

import (
	"fmt"
	"strings"
)

// Strategy selects one of the approximation algorithms.
type Strategy int

const (
	Voxel Strategy = iota
	Decomposition
	Poisson
)

// Strategies lists every strategy in declaration order.
var Strategies = []Strategy{Voxel, Decomposition, Poisson}

func (s Strategy) String() string {
	switch s {
	case Voxel:
		return "voxel"
	case Decomposition:
		return "decomposition"
	case Poisson:
		return "poisson"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a strategy name, case-insensitively, to its value.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("bake: unknown strategy %q", name)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
