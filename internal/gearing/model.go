// Package gearing maps a virtual gear index to the physical parameter
// the trainer should simulate. Three interchangeable strategies share
// one contract; the constants below encode the "feel" of each and are
// load-bearing, not tunables.
package gearing

import (
	"errors"
	"fmt"
)

// Parameter is the simulation target produced for a gear. It is one of
// Simulation (grade-based models) or Resistance (percentage model).
type Parameter interface {
	isParameter()
}

// Simulation asks the trainer to simulate a road: slope fraction,
// rolling resistance coefficient and head wind in m/s.
type Simulation struct {
	Grade     float64
	Crr       float64
	WindSpeed float64
}

func (Simulation) isParameter() {}

// Resistance asks the trainer for a brake percentage directly.
type Resistance struct {
	Percent float64
}

func (Resistance) isParameter() {}

// Model evaluates a gear inside the configured bounds to a fresh
// Parameter. Implementations are pure: no state, no side effects, safe
// for concurrent callers.
type Model interface {
	Evaluate(gear int) Parameter
}

// Model names accepted in configuration.
const (
	ModelResistance = "resistance"
	ModelGradient   = "gradient"
	ModelRatio      = "ratio"
)

var ErrUnknownModel = errors.New("gearing: unknown model")

// Config selects and parameterizes a model. Zero drivetrain lists fall
// back to the stock 2x12 road setup.
type Config struct {
	Model string

	MinGear    int
	MaxGear    int
	TotalGears int

	// resistance model
	BaseResistance       float64
	ResistancePerGear    float64
	MinResistancePercent float64
	MaxResistancePercent float64

	// gradient model
	GradientPerGear float64

	// ratio model
	Chainrings []int
	Cassette   []int
}

// New builds the configured model.
func New(cfg Config) (Model, error) {
	switch cfg.Model {
	case ModelResistance:
		return ResistanceModel{
			MinGear:    cfg.MinGear,
			MaxGear:    cfg.MaxGear,
			TotalGears: cfg.TotalGears,
			Base:       cfg.BaseResistance,
			PerGear:    cfg.ResistancePerGear,
			MinPercent: cfg.MinResistancePercent,
			MaxPercent: cfg.MaxResistancePercent,
		}, nil
	case ModelGradient:
		return GradientModel{
			MinGear: cfg.MinGear,
			MaxGear: cfg.MaxGear,
			PerGear: cfg.GradientPerGear,
		}, nil
	case ModelRatio:
		rings, cassette := cfg.Chainrings, cfg.Cassette
		if len(rings) == 0 {
			rings = DefaultChainrings
		}
		if len(cassette) == 0 {
			cassette = DefaultCassette
		}
		if len(rings) != 2 {
			return nil, fmt.Errorf("gearing: ratio model needs exactly 2 chainrings, got %d", len(rings))
		}
		if len(cassette) == 0 {
			return nil, errors.New("gearing: ratio model needs a non-empty cassette")
		}
		return RatioModel{Chainrings: rings, Cassette: cassette}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, cfg.Model)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
