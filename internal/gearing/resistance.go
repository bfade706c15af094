package gearing

// ResistanceModel drives the trainer brake directly: the gear position
// inside its range scales linearly into a resistance percentage.
type ResistanceModel struct {
	MinGear    int
	MaxGear    int
	TotalGears int

	Base       float64
	PerGear    float64
	MinPercent float64
	MaxPercent float64
}

func (m ResistanceModel) Evaluate(gear int) Parameter {
	ratio := 0.0
	if m.MaxGear > m.MinGear {
		ratio = float64(gear-m.MinGear) / float64(m.MaxGear-m.MinGear)
	}
	r := m.Base + ratio*m.PerGear*float64(m.TotalGears)
	return Resistance{Percent: clamp(r, m.MinPercent, m.MaxPercent)}
}
