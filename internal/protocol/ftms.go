package protocol

import "encoding/binary"

// FTMS Machine Control Point opcodes (Fitness Machine Service 1.0).
const (
	OpCodeSetTargetResistance byte = 0x04
	OpCodeSetTargetPower      byte = 0x05
	OpCodeSetSimulation       byte = 0x11
)

// ControlMessage is one opcoded command for the trainer's control point.
// Immutable once built; the transport sends Bytes() as-is.
type ControlMessage struct {
	Opcode  byte
	Payload []byte
}

// Bytes returns the wire form: opcode followed by the payload.
func (m ControlMessage) Bytes() []byte {
	out := make([]byte, 0, 1+len(m.Payload))
	out = append(out, m.Opcode)
	return append(out, m.Payload...)
}

// EncodeSetResistance builds a Set Target Resistance Level command.
// The percentage is clamped to [0, 100] and truncated to a whole level.
func EncodeSetResistance(percent float64) ControlMessage {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return ControlMessage{
		Opcode:  OpCodeSetTargetResistance,
		Payload: []byte{byte(int(percent))},
	}
}

// EncodeSetTargetPower builds a Set Target Power (ERG) command.
// Watts travel as a signed little-endian 16-bit integer.
func EncodeSetTargetPower(watts int) ControlMessage {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, uint16(int16(watts)))
	return ControlMessage{Opcode: OpCodeSetTargetPower, Payload: p}
}

// EncodeSetSimulation builds a Set Indoor Bike Simulation Parameters
// command. grade is a fraction (0.01 = 1% slope), crr the rolling
// resistance coefficient, windSpeed in m/s. Field order and scaling are
// fixed by the trainer firmware: wind in mm/s, grade in hundredths of a
// percent, crr scaled by 10000, then a reserved wind-resistance word.
func EncodeSetSimulation(grade, crr, windSpeed float64) ControlMessage {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint16(p[0:2], uint16(int16(windSpeed*1000)))
	binary.LittleEndian.PutUint16(p[2:4], uint16(int16(grade*100*100)))
	binary.LittleEndian.PutUint16(p[4:6], uint16(int16(crr*10000)))
	binary.LittleEndian.PutUint16(p[6:8], 0)
	return ControlMessage{Opcode: OpCodeSetSimulation, Payload: p}
}
