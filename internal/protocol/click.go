package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// The Zwift Click reports button state as a protobuf-encoded message:
// field 1 carries the plus (shift up) button, field 2 the minus (shift
// down) button. A field is present only when the controller has
// something to say about that button.
const (
	fieldShiftUp   protowire.Number = 1
	fieldShiftDown protowire.Number = 2
)

// Raw button values as reported by the controller.
const (
	ButtonPressed  uint64 = 0
	ButtonReleased uint64 = 1
)

// ErrMalformedPayload reports bytes that do not parse as a Click button
// notification.
var ErrMalformedPayload = errors.New("protocol: malformed button payload")

// ButtonPayload holds the per-button raw states carried by one
// notification. HasShiftUp / HasShiftDown distinguish "released" from
// "field absent".
type ButtonPayload struct {
	ShiftUp      uint64
	HasShiftUp   bool
	ShiftDown    uint64
	HasShiftDown bool
}

// DecodeButtonPayload parses one notification. The decode is
// all-or-nothing: any wire error or out-of-range button value returns
// ErrMalformedPayload and a zero payload, never a partial one. Unknown
// fields are skipped.
func DecodeButtonPayload(b []byte) (ButtonPayload, error) {
	var p ButtonPayload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ButtonPayload{}, fmt.Errorf("%w: bad tag", ErrMalformedPayload)
		}
		b = b[n:]

		if num != fieldShiftUp && num != fieldShiftDown {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ButtonPayload{}, fmt.Errorf("%w: bad field %d", ErrMalformedPayload, num)
			}
			b = b[n:]
			continue
		}

		if typ != protowire.VarintType {
			return ButtonPayload{}, fmt.Errorf("%w: field %d has wire type %d, want varint", ErrMalformedPayload, num, typ)
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return ButtonPayload{}, fmt.Errorf("%w: bad varint for field %d", ErrMalformedPayload, num)
		}
		b = b[n:]

		if v != ButtonPressed && v != ButtonReleased {
			return ButtonPayload{}, fmt.Errorf("%w: button value %d not in {0,1}", ErrMalformedPayload, v)
		}
		if num == fieldShiftUp {
			p.ShiftUp, p.HasShiftUp = v, true
		} else {
			p.ShiftDown, p.HasShiftDown = v, true
		}
	}
	return p, nil
}

// EncodeButtonPayload is the inverse of DecodeButtonPayload. Absent
// fields are omitted from the wire form.
func EncodeButtonPayload(p ButtonPayload) []byte {
	var b []byte
	if p.HasShiftUp {
		b = protowire.AppendTag(b, fieldShiftUp, protowire.VarintType)
		b = protowire.AppendVarint(b, p.ShiftUp)
	}
	if p.HasShiftDown {
		b = protowire.AppendTag(b, fieldShiftDown, protowire.VarintType)
		b = protowire.AppendVarint(b, p.ShiftDown)
	}
	return b
}
