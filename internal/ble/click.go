package ble

import (
	"fmt"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/SoNdA11/argus-shift/internal/app"
	"github.com/SoNdA11/argus-shift/internal/click"
)

// Zwift Click custom service (reverse-engineered protocol). The async
// characteristic pushes the protobuf-encoded button notifications.
var (
	uuidClickService = mustUUID("00000001-19ca-4651-86e5-fa29dcdd09d1")
	uuidClickAsync   = mustUUID("00000002-19ca-4651-86e5-fa29dcdd09d1")
)

func mustUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Click is a connected Zwift Click controller.
type Click struct {
	device *bluetooth.Device
	name   string
}

// ConnectClick scans for a Click by name and subscribes its button
// notifications. Decoded shift events are handed to onEvent; undecodable
// notifications are reported on the console and dropped without
// touching the detector's state.
func ConnectClick(namePart string, window time.Duration, detector *click.Detector, onEvent func(click.Event)) (*Click, error) {
	fmt.Printf("[BLE] Scanning for controller %q...\n", namePart)

	result, err := scanByName(namePart, window)
	if err != nil {
		return nil, err
	}
	fmt.Printf("🎯 [BLE] Found Controller: %s (%s). Connecting...\n", result.LocalName(), result.Address.String())

	device, err := Adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("ble: connect click: %w", err)
	}

	srvs, err := device.DiscoverServices([]bluetooth.UUID{uuidClickService})
	if err != nil || len(srvs) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("ble: click service not found: %w", err)
	}
	chars, err := srvs[0].DiscoverCharacteristics([]bluetooth.UUID{uuidClickAsync})
	if err != nil || len(chars) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("ble: click async characteristic not found: %w", err)
	}

	err = chars[0].EnableNotifications(func(buf []byte) {
		events, err := detector.HandleNotification(buf)
		if err != nil {
			fmt.Printf("⚠️ [CLICK] Undecodable notification (% x): %v\n", buf, err)
			return
		}
		for _, ev := range events {
			onEvent(ev)
		}
	})
	if err != nil {
		device.Disconnect()
		return nil, fmt.Errorf("ble: subscribe click notifications: %w", err)
	}

	c := &Click{device: &device, name: result.LocalName()}

	app.State.Lock()
	app.State.ConnectedClick = true
	app.State.Unlock()

	fmt.Println("🔗 [SYSTEM] Controller Linked: button notifications active.")
	return c, nil
}

func (c *Click) Disconnect() {
	fmt.Println("🔌 [SYSTEM] Disconnecting Controller...")
	if err := c.device.Disconnect(); err != nil {
		fmt.Printf("⚠️ Error while disconnecting (may already be closed): %v\n", err)
	}

	app.State.Lock()
	app.State.ConnectedClick = false
	app.State.Unlock()
}
