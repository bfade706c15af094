package main

import (
	"fmt"
	"log"
	"time"

	"tinygo.org/x/bluetooth"
)

// Survey tool: list nearby advertisers and flag trainers and Click
// controllers so config.json names can be filled in.

var adapter = bluetooth.DefaultAdapter

var uuidClickService = func() bluetooth.UUID {
	u, err := bluetooth.ParseUUID("00000001-19ca-4651-86e5-fa29dcdd09d1")
	if err != nil {
		panic(err)
	}
	return u
}()

func main() {
	fmt.Println("\n▒▒▒▒▒▒▒ ARGUS SHIFT — SCAN ▒▒▒▒▒▒▒")

	if err := adapter.Enable(); err != nil {
		log.Fatalf("[FATAL] Bluetooth Adapter Fault: %v", err)
	}

	window := 10 * time.Second
	fmt.Printf("[SCAN] Listening for %v...\n\n", window)

	seen := map[string]bool{}
	timer := time.AfterFunc(window, func() { adapter.StopScan() })
	defer timer.Stop()

	err := adapter.Scan(func(a *bluetooth.Adapter, device bluetooth.ScanResult) {
		addr := device.Address.String()
		if seen[addr] {
			return
		}
		seen[addr] = true

		name := device.LocalName()
		if name == "" {
			name = "(unnamed)"
		}

		tag := ""
		switch {
		case device.HasServiceUUID(bluetooth.ServiceUUIDFitnessMachine):
			tag = "  ← trainer (FTMS)"
		case device.HasServiceUUID(bluetooth.ServiceUUIDCyclingPower):
			tag = "  ← power meter"
		case device.HasServiceUUID(uuidClickService):
			tag = "  ← Click controller"
		}

		fmt.Printf("  %-18s RSSI %4d  %s%s\n", addr, device.RSSI, name, tag)
	})
	if err != nil {
		log.Fatalf("[FATAL] Scan failed: %v", err)
	}

	fmt.Printf("\n[SCAN] Done. %d device(s) seen.\n", len(seen))
}
