package shifter

import (
	"context"
	"testing"

	"github.com/SoNdA11/argus-shift/internal/click"
	"github.com/SoNdA11/argus-shift/internal/protocol"
)

// Drives the full path: raw notification bytes through the edge
// detector into the shifter and out as encoded control messages.
func TestClickToTrainerPipeline(t *testing.T) {
	sink := &fakeSink{}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12})
	ctx := context.Background()

	d := click.NewDetector()
	feed := func(p protocol.ButtonPayload) {
		events, err := d.HandleNotification(protocol.EncodeButtonPayload(p))
		if err != nil {
			t.Fatalf("expected notification to decode: %v", err)
		}
		for _, ev := range events {
			switch ev {
			case click.ShiftUp:
				s.ShiftUp(ctx)
			case click.ShiftDown:
				s.ShiftDown(ctx)
			}
		}
	}

	// press and release the plus button
	feed(protocol.ButtonPayload{ShiftUp: protocol.ButtonPressed, HasShiftUp: true})
	feed(protocol.ButtonPayload{ShiftUp: protocol.ButtonReleased, HasShiftUp: true})

	if s.CurrentGear() != 13 {
		t.Fatalf("expected gear 13 after one click, got %d", s.CurrentGear())
	}
	if sink.count() != 1 {
		t.Fatalf("expected exactly one trainer write, got %d", sink.count())
	}

	// gear 13 sits half a step above the middle: grade -0.01
	want := protocol.EncodeSetSimulation(-0.01, 0.004, 0).Bytes()
	got := sink.last().Bytes()
	if len(want) != len(got) {
		t.Fatalf("expected %d byte message, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("expected message % x, got % x", want, got)
		}
	}

	// a duplicate release must not shift again
	feed(protocol.ButtonPayload{ShiftUp: protocol.ButtonReleased, HasShiftUp: true})
	if s.CurrentGear() != 13 || sink.count() != 1 {
		t.Fatalf("expected duplicate release to be a no-op")
	}
}
