package world

import "gridhive.ai/internal/protocol"

func (w *World) buildObs(wk *Worker, nowTick uint64) protocol.ObsMsg {
	status := protocol.ProgramStatus{}
	if c := wk.Program; c != nil {
		status.Assigned = true
		status.Done = c.Done
		status.NodeID = c.CurrentNodeID()
	}
	return protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		WorkerID:        wk.ID,
		Self: protocol.SelfState{
			Pos:         wk.Pos.ToArray(),
			Render:      [2]float64{wk.RenderX, wk.RenderY},
			Activity:    string(wk.Activity),
			CarriedItem: wk.Carried,
			Moving:      wk.IsMoving(),
		},
		Program: status,
		Events:  wk.TakeEvents(),
	}
}
