package ble

import (
	"fmt"
	"log"
	"strings"
	"time"

	"tinygo.org/x/bluetooth"
)

var Adapter = bluetooth.DefaultAdapter

func InitAdapter() {
	fmt.Println("[BLE] Initializing Hardware Stack...")

	if err := Adapter.Enable(); err != nil {
		fmt.Printf("\n[FATAL ERROR] Bluetooth Adapter Fault: %v\n", err)
		log.Fatal("System Halted.")
	}
}

// scanByName blocks until a named advertiser matching namePart (case
// insensitive substring) is seen or the window elapses.
func scanByName(namePart string, window time.Duration) (bluetooth.ScanResult, error) {
	var result bluetooth.ScanResult
	found := false

	timer := time.AfterFunc(window, func() { Adapter.StopScan() })
	defer timer.Stop()

	err := Adapter.Scan(func(adapter *bluetooth.Adapter, device bluetooth.ScanResult) {
		name := device.LocalName()
		if name == "" {
			return
		}
		if !strings.Contains(strings.ToLower(name), strings.ToLower(namePart)) {
			return
		}
		result = device
		found = true
		adapter.StopScan()
	})
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("ble: scan: %w", err)
	}
	if !found {
		return bluetooth.ScanResult{}, fmt.Errorf("ble: no device matching %q within %v", namePart, window)
	}
	return result, nil
}
