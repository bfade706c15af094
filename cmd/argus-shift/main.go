package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/SoNdA11/argus-shift/internal/app"
	"github.com/SoNdA11/argus-shift/internal/ble"
	"github.com/SoNdA11/argus-shift/internal/click"
	"github.com/SoNdA11/argus-shift/internal/config"
	"github.com/SoNdA11/argus-shift/internal/gearing"
	"github.com/SoNdA11/argus-shift/internal/protocol"
	"github.com/SoNdA11/argus-shift/internal/server"
	"github.com/SoNdA11/argus-shift/internal/shifter"
)

func main() {
	fmt.Println("\n▒▒▒▒▒▒▒ ARGUS SHIFT ▒▒▒▒▒▒▒")

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("[FATAL] Config error: %v\n", err)
		os.Exit(1)
	}

	model, err := gearing.New(gearingConfig(cfg))
	if err != nil {
		fmt.Printf("[FATAL] Gearing error: %v\n", err)
		os.Exit(1)
	}

	ble.InitAdapter()

	fmt.Println("[SYSTEM] [1/2] Connecting to trainer...")
	trainer, err := ble.ConnectTrainer(cfg.Bluetooth.KickrName, cfg.Bluetooth.ScanWindow())
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	sft, err := shifter.New(model, trainer, shifter.Config{
		MinGear:     cfg.Gears.MinGear,
		MaxGear:     cfg.Gears.MaxGear,
		InitialGear: cfg.Gears.CurrentGear,
		Hold:        cfg.Gears.SmoothingHold(),
	})
	if err != nil {
		fmt.Printf("[FATAL] Shifter error: %v\n", err)
		os.Exit(1)
	}

	app.State.Lock()
	app.State.Model = cfg.Gears.Model
	app.State.Gear = cfg.Gears.CurrentGear
	app.State.MinGear = cfg.Gears.MinGear
	app.State.MaxGear = cfg.Gears.MaxGear
	app.State.Unlock()

	sft.OnChange(func(res shifter.Result) {
		publish(res, model, cfg.Display.ShowGearChanges, sft.MaxGear())
	})

	ctx, cancel := context.WithCancel(context.Background())
	go sft.Run(ctx)

	// Push the starting gear so the trainer matches before the first shift.
	if _, err := sft.Reapply(ctx); err != nil {
		fmt.Printf("⚠️ [SYSTEM] Initial parameter push failed: %v\n", err)
	}

	fmt.Println("[SYSTEM] [2/2] Connecting to Click controller...")
	detector := click.NewDetector()
	clickDev, err := ble.ConnectClick(cfg.Bluetooth.ClickName, cfg.Bluetooth.ScanWindow(), detector, func(ev click.Event) {
		handleShift(ctx, sft, ev)
	})
	if err != nil {
		fmt.Printf("⚠️ [SYSTEM] No Click controller: %v\n", err)
		fmt.Println("[SYSTEM] Keyboard fallback only (u = up, d = down, g N = set gear, q = quit).")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go keyboardLoop(ctx, sft, sig)
	go server.Start(cfg.Server.Addr, sft)

	fmt.Printf("[SYSTEM] Virtual Shifting Active. Gear %d/%d.\n", sft.CurrentGear(), sft.MaxGear())

	<-sig
	fmt.Println("\n[SYSTEM] Shutting down...")
	cancel()

	// Leave the trainer on neutral ground before releasing it.
	if err := trainer.Write(protocol.EncodeSetSimulation(0, 0.004, 0)); err != nil {
		fmt.Printf("⚠️ [SYSTEM] Neutral reset failed: %v\n", err)
	}
	if clickDev != nil {
		clickDev.Disconnect()
	}
	trainer.Disconnect()

	fmt.Println("✅ [SYSTEM] Disconnected. Goodbye.")
}

func handleShift(ctx context.Context, sft *shifter.Shifter, ev click.Event) {
	var res shifter.Result
	var err error

	switch ev {
	case click.ShiftUp:
		res, err = sft.ShiftUp(ctx)
	case click.ShiftDown:
		res, err = sft.ShiftDown(ctx)
	}

	if err != nil {
		fmt.Printf("⚠️ [SHIFT] %v: %v\n", ev, err)
		return
	}
	if !res.Applied {
		if ev == click.ShiftUp {
			fmt.Printf("[SHIFT] Already in highest gear (%d)\n", res.Gear)
		} else {
			fmt.Printf("[SHIFT] Already in lowest gear (%d)\n", res.Gear)
		}
	}
}

// publish mirrors an applied change into the console state and prints
// the rider-facing gear line.
func publish(res shifter.Result, model gearing.Model, show bool, maxGear int) {
	label := ""
	if rm, ok := model.(gearing.RatioModel); ok {
		label = rm.Display(res.Gear)
	}

	app.State.Lock()
	app.State.Gear = res.Gear
	app.State.GearLabel = label
	app.State.Shifts++
	switch p := res.Parameter.(type) {
	case gearing.Simulation:
		app.State.Grade = p.Grade
	case gearing.Resistance:
		app.State.Resistance = p.Percent
	}
	app.State.Unlock()

	if !show {
		return
	}
	switch p := res.Parameter.(type) {
	case gearing.Simulation:
		pct := p.Grade * 100
		feel := "neutral"
		if pct > 0 {
			feel = "harder"
		} else if pct < 0 {
			feel = "easier"
		}
		if label != "" {
			fmt.Printf("⚙️  Gear: %d/%d (%s) | Gradient: %+.1f%% (%s)\n", res.Gear, maxGear, label, pct, feel)
		} else {
			fmt.Printf("⚙️  Gear: %d/%d | Gradient: %+.1f%% (%s)\n", res.Gear, maxGear, pct, feel)
		}
	case gearing.Resistance:
		fmt.Printf("⚙️  Gear: %d/%d | Resistance: %.1f%%\n", res.Gear, maxGear, p.Percent)
	}
}

// keyboardLoop drives the shifter from stdin so the bridge stays usable
// without a Click controller.
func keyboardLoop(ctx context.Context, sft *shifter.Shifter, quit chan<- os.Signal) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "u":
			handleShift(ctx, sft, click.ShiftUp)
		case line == "d":
			handleShift(ctx, sft, click.ShiftDown)
		case strings.HasPrefix(line, "g "):
			g, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "g ")))
			if err != nil {
				fmt.Println("[KEYS] Usage: g <gear>")
				continue
			}
			if _, err := sft.SetGear(ctx, g); err != nil {
				fmt.Printf("⚠️ [KEYS] %v\n", err)
			}
		case line == "q":
			quit <- os.Interrupt
			return
		}
	}
}

func gearingConfig(cfg config.Config) gearing.Config {
	return gearing.Config{
		Model:                cfg.Gears.Model,
		MinGear:              cfg.Gears.MinGear,
		MaxGear:              cfg.Gears.MaxGear,
		TotalGears:           cfg.Gears.TotalGears,
		BaseResistance:       cfg.Resistance.BaseResistance,
		ResistancePerGear:    cfg.Resistance.ResistancePerGear,
		MinResistancePercent: cfg.Resistance.MinResistancePercent,
		MaxResistancePercent: cfg.Resistance.MaxResistancePercent,
		GradientPerGear:      cfg.Gears.GradientPerGear,
		Chainrings:           cfg.Drivetrain.Chainrings,
		Cassette:             cfg.Drivetrain.Cassette,
	}
}
