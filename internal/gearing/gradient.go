package gearing

// Grade clamp and fixed constants for the gradient-offset model. The
// offset rides on top of whatever terrain grade the training app sends,
// so it stays within ±10%.
const (
	gradientGradeMin = -0.10
	gradientGradeMax = 0.10

	defaultCrr = 0.004
)

// GradientModel offsets the simulated slope around the middle gear:
// gears below the middle feel like climbing, gears above like
// descending.
type GradientModel struct {
	MinGear int
	MaxGear int
	PerGear float64 // grade fraction per gear step, e.g. 0.01 = 1%
}

func (m GradientModel) Evaluate(gear int) Parameter {
	middle := (m.MaxGear + m.MinGear) / 2
	grade := -float64(gear-middle) * m.PerGear
	return Simulation{
		Grade: clamp(grade, gradientGradeMin, gradientGradeMax),
		Crr:   defaultCrr,
	}
}
