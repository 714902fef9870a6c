package world

import (
	"encoding/json"
	"time"

	"gridhive.ai/internal/protocol"
)

// TickLogEntry is what the tick logger persists: enough to re-drive the
// same tick during replay, plus the digest to verify it.
type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Joins    []RecordedJoin    `json:"joins,omitempty"`
	Leaves   []string          `json:"leaves,omitempty"`
	Assigns  []RecordedAssign  `json:"assigns,omitempty"`
	Controls []RecordedControl `json:"controls,omitempty"`
	Digest   string            `json:"digest"`
}

type RecordedJoin struct {
	WorkerID string `json:"worker_id"`
	Name     string `json:"name"`
}

type RecordedAssign struct {
	WorkerID string              `json:"worker_id"`
	Program  protocol.ProgramDoc `json:"program"`
}

type RecordedControl struct {
	WorkerID string `json:"worker_id,omitempty"`
	Op       string `json:"op"`
}

func (w *World) stepInternal(joins []JoinRequest, leaves []string, assigns []AssignRequest, controls []ControlRequest) {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	// Leaves and joins apply deterministically at the tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := w.workers[id]; ok {
			delete(w.clients, id)
			delete(w.workers, id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinWorker(req)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, RecordedJoin{WorkerID: resp.Welcome.WorkerID, Name: req.Name})
	}

	recordedControls := make([]RecordedControl, 0, len(controls))
	for _, req := range controls {
		w.applyControl(req)
		recordedControls = append(recordedControls, RecordedControl{WorkerID: req.WorkerID, Op: req.Op})
	}

	// Program assignments, in arrival order.
	recordedAssigns := make([]RecordedAssign, 0, len(assigns))
	for _, req := range assigns {
		wk := w.workers[req.WorkerID]
		if wk == nil {
			continue
		}
		g := req.Graph
		if g == nil {
			g = GraphFromDoc(req.Doc)
		}
		w.AssignProgram(wk, g)
		recordedAssigns = append(recordedAssigns, RecordedAssign{WorkerID: wk.ID, Program: req.Doc})
	}

	// Systems: programs first so paths issued this tick start moving this
	// tick, then movement.
	w.systemPrograms(nowTick)
	w.systemMovement(nowTick)

	// Build + send OBS for each attached worker.
	for id, wk := range w.workers {
		cl := w.clients[id]
		if cl == nil || cl.Out == nil {
			continue
		}
		obs := w.buildObs(wk, nowTick)
		b, err := json.Marshal(obs)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		every := uint64(1)
		if w.tun.TickLogEveryTicks > 0 {
			every = uint64(w.tun.TickLogEveryTicks)
		}
		if nowTick%every == 0 || len(recordedJoins)+len(recordedLeaves)+len(recordedAssigns)+len(recordedControls) > 0 {
			_ = w.tickLogger.WriteTick(TickLogEntry{
				Tick:     nowTick,
				Joins:    recordedJoins,
				Leaves:   recordedLeaves,
				Assigns:  recordedAssigns,
				Controls: recordedControls,
				Digest:   digest,
			})
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	w.tick.Add(1)

	programsDone := 0
	for _, wk := range w.workers {
		if wk.Program != nil && wk.Program.Done {
			programsDone++
		}
	}
	w.metrics.Store(WorldMetrics{
		Tick:         nowTick + 1,
		Workers:      len(w.workers),
		Clients:      len(w.clients),
		ProgramsDone: programsDone,
		QueueDepths: QueueDepths{
			Join:    len(w.join),
			Leave:   len(w.leave),
			Assign:  len(w.assign),
			Control: len(w.control),
		},
		StepMS: stepMS,
	})
}

func (w *World) joinWorker(req JoinRequest) JoinResponse {
	wk := w.addWorker(req.Name, w.spawnPos())
	if req.Out != nil {
		w.clients[wk.ID] = &clientState{Out: req.Out}
	}
	return JoinResponse{
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			WorkerID:        wk.ID,
			WorldParams: protocol.WorldParams{
				TickRateHz: w.cfg.TickRateHz,
				Width:      w.cfg.Width,
				Height:     w.cfg.Height,
				Seed:       w.cfg.Seed,
			},
		},
	}
}

func (w *World) applyControl(req ControlRequest) {
	switch req.Op {
	case protocol.ControlStop:
		if wk := w.workers[req.WorkerID]; wk != nil {
			wk.Program = nil
			wk.Path = nil
			wk.Progress = 0
			wk.Branch = nil
			wk.SetActivity(ActivityIdle)
		}
	case protocol.ControlBackendDone:
		w.SetBackendDone(true)
	}
}
