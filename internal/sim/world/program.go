package world

import (
	"gridhive.ai/internal/protocol"
	"gridhive.ai/internal/sim/behavior"
)

type sensorState int

const (
	sensorIdle sensorState = iota
	sensorWaiting
	sensorDone
)

// Cursor is the executor's position within an assigned graph plus the
// transient per-node progress flags. One cursor exists per active worker;
// reassigning a program replaces it wholesale.
type Cursor struct {
	Graph *behavior.Graph

	// Index into Graph.Nodes; -1 once the program is done. Index, not
	// node id, so the hot path is an array access.
	Index int
	Done  bool

	// ActionStarted marks that a multi-tick node has issued its
	// initiating side effect; handlers are idempotent across re-entry.
	ActionStarted bool
	WaitTimer     int

	// LoopCounters track iterations consumed per loop node id. Cursor-
	// owned, so concurrent workers never share counters.
	LoopCounters map[int]int

	SensorState sensorState
	// sensorCh is the mailbox an in-flight sensing call resolves into.
	// It is local to the cursor: if the worker is torn down mid-call the
	// callback lands here harmlessly and is never observed.
	sensorCh chan sensorResult
}

// newCursor builds the executor state for a fresh graph assignment.
func newCursor(g *behavior.Graph) *Cursor {
	return &Cursor{
		Graph:        g,
		Index:        0,
		LoopCounters: map[int]int{},
	}
}

// GraphFromDoc converts the wire shape into an executable graph. Shape only;
// malformed params are tolerated downstream by permissive coercion.
func GraphFromDoc(doc protocol.ProgramDoc) *behavior.Graph {
	nodes := make([]behavior.Node, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		nodes = append(nodes, behavior.Node{
			ID:      nd.ID,
			Type:    behavior.NodeType(nd.Type),
			Label:   nd.Label,
			Params:  nd.Params,
			Next:    nd.Next,
			AltNext: nd.AltNext,
		})
	}
	return behavior.NewGraph(nodes)
}

// AssignProgram replaces the worker's cursor. Any in-flight sensor call on
// the old cursor resolves into its abandoned mailbox.
func (w *World) AssignProgram(wk *Worker, g *behavior.Graph) {
	wk.Program = newCursor(g)
	if wk.Activity == ActivityDormant {
		wk.SetActivity(ActivityIdle)
	}
}

// systemPrograms runs the executor once per worker per tick, in worker ID
// order. A worker whose program misbehaves degrades to "looks confused";
// it can never corrupt the loop for others.
func (w *World) systemPrograms(nowTick uint64) {
	for _, wk := range w.sortedWorkers() {
		w.tickProgram(wk, nowTick)
	}
}

// tickProgram advances one worker by at most one node effect. It is a total
// function: every failure mode degrades to an advance or a finish.
func (w *World) tickProgram(wk *Worker, nowTick uint64) {
	c := wk.Program
	if c == nil || c.Done {
		return
	}
	if c.Graph.Len() == 0 {
		c.finish()
		return
	}
	n := c.Graph.At(c.Index)
	if n == nil {
		c.finish()
		return
	}
	h := nodeDispatch[n.Type]
	if h == nil {
		// Unknown instruction from the planner: skip it.
		w.advanceFrom(wk, c, n.Next)
		return
	}
	h(w, wk, c, n, nowTick)
}

// advanceFrom resolves the successor and clears all per-node transient
// state. Successor policy: the explicit id when it resolves, else the first
// loop-type node in the graph (the documented loop-back fallback for
// sequences that omit explicit wiring), else done.
func (w *World) advanceFrom(wk *Worker, c *Cursor, nextID int) {
	c.ActionStarted = false
	c.WaitTimer = 0
	c.SensorState = sensorIdle
	c.sensorCh = nil

	if i, ok := c.Graph.IndexOf(nextID); ok {
		c.Index = i
		return
	}
	if i := c.Graph.FirstOfType(behavior.TypeLoop); i >= 0 {
		c.Index = i
		return
	}
	c.finish()
}

func (c *Cursor) finish() {
	c.Done = true
	c.Index = -1
	c.ActionStarted = false
	c.WaitTimer = 0
	c.SensorState = sensorIdle
	c.sensorCh = nil
}

// CurrentNodeID reports the node under the cursor for observers; 0 when
// none.
func (c *Cursor) CurrentNodeID() int {
	if c == nil || c.Done {
		return 0
	}
	if n := c.Graph.At(c.Index); n != nil {
		return n.ID
	}
	return 0
}
