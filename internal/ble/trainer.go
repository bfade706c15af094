package ble

import (
	"fmt"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/SoNdA11/argus-shift/internal/app"
	"github.com/SoNdA11/argus-shift/internal/protocol"
)

var (
	uuidServiceFTMS      = bluetooth.ServiceUUIDFitnessMachine
	uuidCharControlPoint = bluetooth.CharacteristicUUIDFitnessMachineControlPoint
)

// Trainer is a connected smart trainer's control surface. It implements
// shifter.Sink by writing control messages to the FTMS control point.
type Trainer struct {
	device  *bluetooth.Device
	control bluetooth.DeviceCharacteristic
	name    string
}

// ConnectTrainer scans for a trainer whose name contains namePart,
// connects and wires up its control point.
func ConnectTrainer(namePart string, window time.Duration) (*Trainer, error) {
	fmt.Printf("[BLE] Scanning for trainer %q...\n", namePart)

	result, err := scanByName(namePart, window)
	if err != nil {
		return nil, err
	}
	fmt.Printf("🎯 [BLE] Found Trainer: %s (%s). Connecting...\n", result.LocalName(), result.Address.String())

	device, err := Adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("ble: connect trainer: %w", err)
	}

	srvs, err := device.DiscoverServices([]bluetooth.UUID{uuidServiceFTMS})
	if err != nil || len(srvs) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("ble: trainer has no fitness machine service: %w", err)
	}
	chars, err := srvs[0].DiscoverCharacteristics([]bluetooth.UUID{uuidCharControlPoint})
	if err != nil || len(chars) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("ble: trainer has no control point: %w", err)
	}

	t := &Trainer{device: &device, control: chars[0], name: result.LocalName()}

	app.State.Lock()
	app.State.ConnectedTrainer = true
	app.State.TrainerName = t.name
	app.State.Unlock()

	fmt.Println("🔗 [SYSTEM] Trainer Linked: control point ready.")
	return t, nil
}

// Name returns the trainer's advertised name.
func (t *Trainer) Name() string {
	return t.name
}

// Write sends one control message to the trainer.
func (t *Trainer) Write(msg protocol.ControlMessage) error {
	if _, err := t.control.WriteWithoutResponse(msg.Bytes()); err != nil {
		return fmt.Errorf("ble: control point write: %w", err)
	}
	return nil
}

func (t *Trainer) Disconnect() {
	fmt.Println("🔌 [SYSTEM] Disconnecting Trainer...")
	if err := t.device.Disconnect(); err != nil {
		fmt.Printf("⚠️ Error while disconnecting (may already be closed): %v\n", err)
	}

	app.State.Lock()
	app.State.ConnectedTrainer = false
	app.State.TrainerName = ""
	app.State.Unlock()
}
