package world

import (
	"context"
	"time"

	"gridhive.ai/internal/protocol"
	"gridhive.ai/internal/sim/behavior"
)

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type AssignRequest struct {
	WorkerID string
	Doc      protocol.ProgramDoc
	Graph    *behavior.Graph
}

type ControlRequest struct {
	WorkerID string
	Op       string
}

func (w *World) Join() chan<- JoinRequest       { return w.join }
func (w *World) Leave() chan<- string           { return w.leave }
func (w *World) Assign() chan<- AssignRequest   { return w.assign }
func (w *World) Control() chan<- ControlRequest { return w.control }

// Run drives the world in lockstep with a real-time clock. All mutation
// funnels through this goroutine: requests buffer between ticks and apply
// at the tick boundary, so execution stays single-threaded and cooperative.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingAssigns []AssignRequest
	var pendingControls []ControlRequest

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case req := <-w.assign:
			pendingAssigns = append(pendingAssigns, req)
		case req := <-w.control:
			pendingControls = append(pendingControls, req)
		case <-ticker.C:
			w.stepInternal(pendingJoins, pendingLeaves, pendingAssigns, pendingControls)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingAssigns = pendingAssigns[:0]
			pendingControls = pendingControls[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// step is the test/replay entry point with the same ordering semantics as
// the server loop.
func (w *World) step(joins []JoinRequest, leaves []string, assigns []AssignRequest, controls []ControlRequest) {
	w.stepInternal(joins, leaves, assigns, controls)
}

// StepOnce advances the world by a single tick and reports the tick it
// executed plus the resulting state digest. Primarily for deterministic
// replays and tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, assigns []AssignRequest, controls []ControlRequest) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.stepInternal(joins, leaves, assigns, controls)
	return tick, w.stateDigest(tick)
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
