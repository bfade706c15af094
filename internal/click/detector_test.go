package click

import (
	"errors"
	"testing"

	"github.com/SoNdA11/argus-shift/internal/protocol"
)

func payload(t *testing.T, p protocol.ButtonPayload) []byte {
	t.Helper()
	return protocol.EncodeButtonPayload(p)
}

func upPayload(t *testing.T, v uint64) []byte {
	return payload(t, protocol.ButtonPayload{ShiftUp: v, HasShiftUp: true})
}

func downPayload(t *testing.T, v uint64) []byte {
	return payload(t, protocol.ButtonPayload{ShiftDown: v, HasShiftDown: true})
}

func TestDetectorFiresOnReleaseOnly(t *testing.T) {
	d := NewDetector()

	events, err := d.HandleNotification(upPayload(t, protocol.ButtonPressed))
	if err != nil {
		t.Fatalf("expected press to decode: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no event on press, got %v", events)
	}

	events, err = d.HandleNotification(upPayload(t, protocol.ButtonReleased))
	if err != nil {
		t.Fatalf("expected release to decode: %v", err)
	}
	if len(events) != 1 || events[0] != ShiftUp {
		t.Fatalf("expected one ShiftUp on release, got %v", events)
	}
}

func TestDetectorIgnoresDuplicates(t *testing.T) {
	d := NewDetector()

	d.HandleNotification(upPayload(t, protocol.ButtonPressed))
	d.HandleNotification(upPayload(t, protocol.ButtonReleased))

	// unchanged value must not re-fire
	events, err := d.HandleNotification(upPayload(t, protocol.ButtonReleased))
	if err != nil {
		t.Fatalf("expected duplicate to decode: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no event on duplicate, got %v", events)
	}
}

func TestDetectorReleaseWithoutPress(t *testing.T) {
	d := NewDetector()

	// initial state is released; a released value is a duplicate
	events, _ := d.HandleNotification(downPayload(t, protocol.ButtonReleased))
	if len(events) != 0 {
		t.Fatalf("expected no event without a prior press, got %v", events)
	}
}

func TestDetectorChannelsAreIndependent(t *testing.T) {
	d := NewDetector()

	d.HandleNotification(upPayload(t, protocol.ButtonPressed))

	// down channel cycles while up stays held
	d.HandleNotification(downPayload(t, protocol.ButtonPressed))
	events, _ := d.HandleNotification(downPayload(t, protocol.ButtonReleased))
	if len(events) != 1 || events[0] != ShiftDown {
		t.Fatalf("expected one ShiftDown, got %v", events)
	}

	// up channel still completes its own cycle afterwards
	events, _ = d.HandleNotification(upPayload(t, protocol.ButtonReleased))
	if len(events) != 1 || events[0] != ShiftUp {
		t.Fatalf("expected one ShiftUp, got %v", events)
	}
}

func TestDetectorBothChannelsInOnePayload(t *testing.T) {
	d := NewDetector()

	both := payload(t, protocol.ButtonPayload{
		ShiftUp: protocol.ButtonPressed, HasShiftUp: true,
		ShiftDown: protocol.ButtonPressed, HasShiftDown: true,
	})
	d.HandleNotification(both)

	both = payload(t, protocol.ButtonPayload{
		ShiftUp: protocol.ButtonReleased, HasShiftUp: true,
		ShiftDown: protocol.ButtonReleased, HasShiftDown: true,
	})
	events, _ := d.HandleNotification(both)
	if len(events) != 2 || events[0] != ShiftUp || events[1] != ShiftDown {
		t.Fatalf("expected [ShiftUp ShiftDown], got %v", events)
	}
}

func TestDetectorMalformedPayloadLeavesStateUntouched(t *testing.T) {
	d := NewDetector()

	d.HandleNotification(upPayload(t, protocol.ButtonPressed))

	if _, err := d.HandleNotification([]byte{0x08}); !errors.Is(err, protocol.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}

	// the held press survives the bad payload, so the release still fires
	events, _ := d.HandleNotification(upPayload(t, protocol.ButtonReleased))
	if len(events) != 1 || events[0] != ShiftUp {
		t.Fatalf("expected one ShiftUp after malformed payload, got %v", events)
	}
}
