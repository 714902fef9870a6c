// A scripted planner client: joins the world, assigns a small patrol
// program to its worker, and prints the OBS stream. Useful for smoke
// testing a running server without a real planner.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"gridhive.ai/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "planner name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlannerName:     *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	assigned := false
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME worker_id=%s grid=%dx%d tick_rate=%d",
				w.WorkerID, w.WorldParams.Width, w.WorldParams.Height, w.WorldParams.TickRateHz)

		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(msg, &obs); err != nil {
				continue
			}
			if !assigned {
				assigned = true
				if err := conn.WriteJSON(patrolProgram(obs.Self.Pos)); err != nil {
					logger.Fatalf("send PROGRAM: %v", err)
				}
				logger.Printf("assigned patrol program")
			}
			for _, e := range obs.Events {
				logger.Printf("tick=%d event=%v", obs.Tick, e)
			}
		}
	}
}

// patrolProgram walks a short loop around the spawn cell, narrating as it
// goes.
func patrolProgram(pos [2]int) protocol.ProgramMsg {
	return protocol.ProgramMsg{
		Type:            protocol.TypeProgram,
		ProtocolVersion: protocol.Version,
		Program: protocol.ProgramDoc{
			Nodes: []protocol.NodeDoc{
				{ID: 1, Type: "loop", Label: "patrol forever", Params: map[string]any{"count": -1}, Next: 2},
				{ID: 2, Type: "log", Params: map[string]any{"message": "patrol lap"}, Next: 3},
				{ID: 3, Type: "move", Params: map[string]any{"x": pos[0] + 4, "y": pos[1]}, Next: 4},
				{ID: 4, Type: "wait", Params: map[string]any{"ticks": 10}, Next: 5},
				{ID: 5, Type: "move", Params: map[string]any{"x": pos[0], "y": pos[1]}},
			},
		},
	}
}
