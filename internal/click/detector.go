// Package click turns raw Zwift Click notifications into discrete shift
// events. The controller reports 0 while a button is held and 1 on lift;
// a shift is the completed press-and-release cycle, so events fire on
// the trailing edge only.
package click

import "github.com/SoNdA11/argus-shift/internal/protocol"

// Event is one discrete shift.
type Event int

const (
	ShiftUp Event = iota
	ShiftDown
)

func (e Event) String() string {
	if e == ShiftUp {
		return "SHIFT UP"
	}
	return "SHIFT DOWN"
}

// channelState tracks the last raw state of one physical button.
// Starts released; duplicate notifications are no-ops.
type channelState struct {
	pressed bool
}

// step feeds one raw value and reports whether a full press-and-release
// cycle completed.
func (c *channelState) step(v uint64) bool {
	if v == protocol.ButtonPressed {
		c.pressed = true
		return false
	}
	if !c.pressed {
		return false
	}
	c.pressed = false
	return true
}

// Detector decodes notifications and runs the two button channels
// independently. One instance per controller; not safe for concurrent
// use, feed it from a single notification stream.
type Detector struct {
	up   channelState
	down channelState
}

func NewDetector() *Detector {
	return &Detector{}
}

// HandleNotification decodes one notification and returns the shift
// events it completed, shift-up channel first. A payload carrying only
// presses or duplicates returns no events. A payload that fails to
// decode returns the error and leaves both channels untouched.
func (d *Detector) HandleNotification(raw []byte) ([]Event, error) {
	p, err := protocol.DecodeButtonPayload(raw)
	if err != nil {
		return nil, err
	}

	var events []Event
	if p.HasShiftUp && d.up.step(p.ShiftUp) {
		events = append(events, ShiftUp)
	}
	if p.HasShiftDown && d.down.step(p.ShiftDown) {
		events = append(events, ShiftDown)
	}
	return events, nil
}
