package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SoNdA11/argus-shift/internal/app"
	"github.com/SoNdA11/argus-shift/internal/shifter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func Start(addr string, s *shifter.Shifter) {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./web/template/index.html")
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, s)
	})

	fmt.Printf("[HTTP] Online interface at: http://localhost%s\n", addr)

	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] Error starting server: %v\n", err)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, s *shifter.Shifter) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	go func() {
		for {
			app.State.Lock()
			msg := map[string]interface{}{
				"model":       app.State.Model,
				"gear":        app.State.Gear,
				"minGear":     app.State.MinGear,
				"maxGear":     app.State.MaxGear,
				"grade":       app.State.Grade,
				"resistance":  app.State.Resistance,
				"gearLabel":   app.State.GearLabel,
				"shifts":      app.State.Shifts,
				"trainer":     app.State.TrainerName,
				"trainerConn": app.State.ConnectedTrainer,
				"clickConn":   app.State.ConnectedClick,
			}
			app.State.Unlock()

			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			time.Sleep(200 * time.Millisecond)
		}
	}()

	for {
		var cmd map[string]interface{}
		if err := conn.ReadJSON(&cmd); err != nil {
			break
		}

		if dir, ok := cmd["shift"].(string); ok {
			switch dir {
			case "up":
				if res, err := s.ShiftUp(r.Context()); err != nil {
					fmt.Printf("⚠️ [HTTP] Shift up failed: %v\n", err)
				} else if !res.Applied {
					fmt.Printf("[HTTP] Already in highest gear (%d)\n", res.Gear)
				}
			case "down":
				if res, err := s.ShiftDown(r.Context()); err != nil {
					fmt.Printf("⚠️ [HTTP] Shift down failed: %v\n", err)
				} else if !res.Applied {
					fmt.Printf("[HTTP] Already in lowest gear (%d)\n", res.Gear)
				}
			}
		}
		if g, ok := cmd["gear"].(float64); ok {
			if _, err := s.SetGear(r.Context(), int(g)); err != nil {
				fmt.Printf("⚠️ [HTTP] Set gear failed: %v\n", err)
			}
		}
	}
}
