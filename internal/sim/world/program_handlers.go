package world

import (
	"fmt"

	"gridhive.ai/internal/protocol"
	"gridhive.ai/internal/sim/behavior"
)

type nodeHandler func(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64)

var nodeDispatch = map[behavior.NodeType]nodeHandler{
	behavior.TypeSensor:      handleNodeSensor,
	behavior.TypeMove:        handleNodeMove,
	behavior.TypePickup:      handleNodePickup,
	behavior.TypeDrop:        handleNodeDrop,
	behavior.TypeIfElse:      handleNodeIfElse,
	behavior.TypeLoop:        handleNodeLoop,
	behavior.TypeWait:        handleNodeWait,
	behavior.TypeLog:         handleNodeLog,
	behavior.TypePlaceEntity: handleNodePlaceEntity,
}

// move: resolve a target cell (explicit coords win over category lookup),
// request a path, and hold until the worker stops moving. No path means
// already adjacent or unreachable; both advance immediately, best-effort.
func handleNodeMove(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	if !c.ActionStarted {
		target, ok := w.resolveMoveTarget(wk, n)
		if !ok {
			w.advanceFrom(wk, c, n.Next)
			return
		}
		path := w.FindPath(wk.Pos, target)
		if len(path) == 0 {
			w.advanceFrom(wk, c, n.Next)
			return
		}
		wk.StartPath(path)
		c.ActionStarted = true
		return
	}
	if !wk.IsMoving() {
		w.advanceFrom(wk, c, n.Next)
	}
}

func (w *World) resolveMoveTarget(wk *Worker, n *behavior.Node) (Vec2i, bool) {
	if n.HasParam("x") && n.HasParam("y") {
		return Vec2i{X: n.ParamInt("x"), Y: n.ParamInt("y")}, true
	}
	if e := w.NearestEntity(n.ParamString("target"), wk.Pos); e != nil {
		return e.Pos, true
	}
	return Vec2i{}, false
}

// pickup: one custody transfer attempt on the first tick, then a fixed
// visual dwell regardless of whether anything was found. An unmatched
// pickup leaves the carry slot empty and degrades to a coded NODE_FAIL
// event rather than an error.
func handleNodePickup(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	if !c.ActionStarted {
		c.ActionStarted = true
		c.WaitTimer = 0
		wk.SetActivity(ActivityWorking)
		w.doPickup(wk, n, nowTick)
		return
	}
	c.WaitTimer++
	if c.WaitTimer >= w.tun.PickupDwellTicks {
		wk.SetActivity(ActivityIdle)
		w.advanceFrom(wk, c, n.Next)
	}
}

func (w *World) doPickup(wk *Worker, n *behavior.Node, nowTick uint64) {
	if wk.Carried != "" {
		w.failNode(wk, "pickup", protocol.ErrConflict, "carry slot occupied", nowTick)
		return
	}
	itemType := n.ParamString("item")

	if e := w.NearestEntity(n.ParamString("target"), wk.Pos); e != nil {
		if got, ok := e.TakeItem(itemType); ok {
			wk.Carried = got
			wk.AddEvent(protocol.Event{"t": nowTick, "type": "PICKUP", "item": got, "from": e.ID})
			return
		}
	}
	// Fall back to loose items within one cell of the worker.
	if it := w.groundItemNear(wk.Pos, itemType); it != nil {
		it.Claimed = true
		w.removeItem(it.ID)
		wk.Carried = it.Type
		wk.AddEvent(protocol.Event{"t": nowTick, "type": "PICKUP", "item": it.Type, "from": "ground"})
		return
	}
	w.failNode(wk, "pickup", protocol.ErrInvalidTarget, "no matching item", nowTick)
}

// drop: symmetric to pickup. "ground" or an empty destination places the
// item at the worker's cell.
func handleNodeDrop(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	if !c.ActionStarted {
		c.ActionStarted = true
		c.WaitTimer = 0
		wk.SetActivity(ActivityWorking)
		w.doDrop(wk, n, nowTick)
		return
	}
	c.WaitTimer++
	if c.WaitTimer >= w.tun.DropDwellTicks {
		wk.SetActivity(ActivityIdle)
		w.advanceFrom(wk, c, n.Next)
	}
}

func (w *World) doDrop(wk *Worker, n *behavior.Node, nowTick uint64) {
	if wk.Carried == "" {
		w.failNode(wk, "drop", protocol.ErrConflict, "nothing carried", nowTick)
		return
	}
	dest := n.ParamString("target")
	if dest == "" || dest == "ground" {
		w.spawnItem(wk.Carried, wk.Pos)
		wk.AddEvent(protocol.Event{"t": nowTick, "type": "DROP", "item": wk.Carried, "to": "ground"})
		wk.Carried = ""
		return
	}
	if e := w.NearestEntity(dest, wk.Pos); e != nil && e.AddItem(wk.Carried) {
		wk.AddEvent(protocol.Event{"t": nowTick, "type": "DROP", "item": wk.Carried, "to": e.ID})
		wk.Carried = ""
		return
	}
	w.failNode(wk, "drop", protocol.ErrInvalidTarget, "no accepting destination", nowTick)
}

// ifelse: evaluated synchronously every tick it is visited. False routes to
// AltNext when present, else falls through to Next, so ifelse never
// dead-ends the graph.
func handleNodeIfElse(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	target := n.Next
	if !w.evalCondition(wk, n.ParamString("condition"), n.ParamString("value")) && n.AltNext != 0 {
		target = n.AltNext
	}
	w.advanceFrom(wk, c, target)
}

// loop: a marker with an iteration budget. It never redirects control flow
// itself; it exists to be targeted by explicit wiring and by the advance
// fallback. Advance fires every visit; only the bookkeeping differs once
// the budget is consumed (the counter is discarded).
func handleNodeLoop(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	count := n.ParamInt("count")
	if count > 0 {
		c.LoopCounters[n.ID]++
		if c.LoopCounters[n.ID] >= count {
			delete(c.LoopCounters, n.ID)
		}
	}
	w.advanceFrom(wk, c, n.Next)
}

// wait: a pure tick counter.
func handleNodeWait(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	c.WaitTimer++
	if c.WaitTimer >= n.ParamInt("ticks") {
		w.advanceFrom(wk, c, n.Next)
	}
}

// log: synchronous, zero duration.
func handleNodeLog(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	w.logLine(wk, n.ParamString("message"), nowTick)
	w.advanceFrom(wk, c, n.Next)
}

// place_entity: resolve a free cell (growing Chebyshev ring in fixed scan
// order, not nearest-by-distance), relocate the worker if it is
// standing on the target, then create the entity. Failure logs, marks the
// worker confused, and still advances after the dwell.
func handleNodePlaceEntity(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	if !c.ActionStarted {
		c.ActionStarted = true
		c.WaitTimer = 0
		wk.SetActivity(ActivityWorking)
		w.doPlaceEntity(wk, n, nowTick)
		return
	}
	c.WaitTimer++
	if c.WaitTimer >= w.tun.PlaceDwellTicks {
		if wk.Activity == ActivityWorking {
			wk.SetActivity(ActivityIdle)
		}
		w.advanceFrom(wk, c, n.Next)
	}
}

func (w *World) doPlaceEntity(wk *Worker, n *behavior.Node, nowTick uint64) {
	category := n.ParamString("entity")
	if category == "" {
		w.failNode(wk, "place_entity", protocol.ErrBadRequest, "missing entity type", nowTick)
		w.logLine(wk, "place failed: missing entity type", nowTick)
		wk.SetActivity(ActivityConfused)
		return
	}
	target := wk.Pos
	if n.HasParam("x") && n.HasParam("y") {
		target = Vec2i{X: n.ParamInt("x"), Y: n.ParamInt("y")}
	}

	// The worker may be standing on the target cell; step it aside first.
	if wk.Pos == target {
		if adj, ok := w.AdjacentFreeCell(target); ok {
			wk.PrevPos = wk.Pos
			wk.Pos = adj
			wk.RenderX, wk.RenderY = float64(adj.X), float64(adj.Y)
		}
	}

	cell, ok := w.resolvePlacementCell(target)
	if !ok {
		w.failNode(wk, "place_entity", protocol.ErrBlocked, "no free cell", nowTick)
		w.logLine(wk, fmt.Sprintf("place failed: no free cell near (%d,%d) for %s", target.X, target.Y, category), nowTick)
		wk.SetActivity(ActivityConfused)
		return
	}
	e := w.SpawnEntity(category, cell)
	if e == nil {
		w.failNode(wk, "place_entity", protocol.ErrBlocked, "cell rejected entity", nowTick)
		w.logLine(wk, fmt.Sprintf("place failed: cell (%d,%d) rejected %s", cell.X, cell.Y, category), nowTick)
		wk.SetActivity(ActivityConfused)
		return
	}
	w.logLine(wk, fmt.Sprintf("placed %s at (%d,%d)", category, cell.X, cell.Y), nowTick)
	wk.SetActivity(ActivityHappy)
}

// resolvePlacementCell takes the target when free, else scans rings of
// Chebyshev radius 1..3 and accepts the first free in-bounds cell in dx,dy
// scan order.
func (w *World) resolvePlacementCell(target Vec2i) (Vec2i, bool) {
	if w.cellFree(target) {
		return target, true
	}
	for r := 1; r <= 3; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if Chebyshev(Vec2i{}, Vec2i{X: dx, Y: dy}) != r {
					continue
				}
				p := Vec2i{X: target.X + dx, Y: target.Y + dy}
				if w.cellFree(p) {
					return p, true
				}
			}
		}
	}
	return Vec2i{}, false
}

// logLine routes a message to the worker event stream and the injected
// external sink.
func (w *World) logLine(wk *Worker, msg string, nowTick uint64) {
	wk.AddEvent(protocol.Event{"t": nowTick, "type": "LOG", "message": msg})
	if w.logSink != nil {
		w.logSink(msg)
	}
}

// failNode annotates a degraded node outcome on the worker event stream so
// planners can see why a node fell through. Failures never become Go
// errors and never reach the log sink on their own.
func (w *World) failNode(wk *Worker, node, code, msg string, nowTick uint64) {
	wk.AddEvent(protocol.Event{"t": nowTick, "type": "NODE_FAIL", "node": node, "code": code, "message": msg})
}
