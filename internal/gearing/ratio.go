package gearing

import "fmt"

// Stock 2x12 road drivetrain: 39/53 chainrings, 10-34 cassette listed
// largest cog first.
var (
	DefaultChainrings = []int{39, 53}
	DefaultCassette   = []int{34, 30, 26, 23, 21, 19, 17, 15, 13, 12, 11, 10}
)

// Ratio-to-grade conversion. A gear ratio below the reference reads as
// climbing, above as descending, 5% of grade per unit of ratio, capped
// at ±15%.
const (
	referenceRatio = 2.5
	gradePerRatio  = 0.05

	ratioGradeMin = -0.15
	ratioGradeMax = 0.15
)

// RatioModel simulates a real drivetrain: each gear maps to a
// chainring/cog pair and the resulting ratio becomes a grade offset.
// Gears 1-12 ride the small ring, 13-24 the large one. Cog selection
// clamps at the cassette ends, so the outermost gears on a ring may
// share a cog, the same way a physical cassette runs out of unique
// combinations at the overlap gears.
type RatioModel struct {
	Chainrings []int // small ring first
	Cassette   []int // largest cog first
}

// Combination returns the chainring and cog tooth counts for a gear.
func (m RatioModel) Combination(gear int) (chainring, cog int) {
	chainring = m.Chainrings[0]
	idx := 12 - gear
	if gear > 12 {
		chainring = m.Chainrings[1]
		idx = 24 - gear
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.Cassette)-1 {
		idx = len(m.Cassette) - 1
	}
	return chainring, m.Cassette[idx]
}

// Ratio returns chainring teeth over cog teeth for a gear.
func (m RatioModel) Ratio(gear int) float64 {
	chainring, cog := m.Combination(gear)
	return float64(chainring) / float64(cog)
}

// Display formats a gear the way a rider reads it, e.g. "53-17".
func (m RatioModel) Display(gear int) string {
	chainring, cog := m.Combination(gear)
	return fmt.Sprintf("%d-%d", chainring, cog)
}

func (m RatioModel) Evaluate(gear int) Parameter {
	grade := (referenceRatio - m.Ratio(gear)) * gradePerRatio
	return Simulation{
		Grade: clamp(grade, ratioGradeMin, ratioGradeMax),
		Crr:   defaultCrr,
	}
}
