package app

import "sync"

// AppState is the live state shared with the web console. The shifter
// owns the authoritative gear; these fields are display copies updated
// on every change.
type AppState struct {
	sync.Mutex

	TrainerName      string
	ConnectedTrainer bool
	ConnectedClick   bool

	Model   string
	Gear    int
	MinGear int
	MaxGear int

	Grade      float64 // simulation models: current slope fraction
	Resistance float64 // resistance model: current brake percent
	GearLabel  string  // ratio model: "53-17" style display

	Shifts int // shifts applied since start
}

var State = &AppState{}
