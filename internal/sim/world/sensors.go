package world

import (
	"gridhive.ai/internal/protocol"
	"gridhive.ai/internal/sim/behavior"
)

// sensorResult is what an in-flight sensing call resolves to. The message
// is forwarded to the log sink either way; failed additionally marks the
// worker event with an error code.
type sensorResult struct {
	msg    string
	failed bool
}

// handleNodeSensor is the one node type allowed to straddle an external I/O
// boundary. The call is fire-and-forget relative to the tick loop: it runs
// in its own goroutine and resolves into the cursor's mailbox, which the
// executor polls. Exactly one call is issued per visit; failures are logged
// and treated as completed reads, not retried or propagated.
func handleNodeSensor(w *World, wk *Worker, c *Cursor, n *behavior.Node, nowTick uint64) {
	switch c.SensorState {
	case sensorIdle:
		if w.sensorFn == nil {
			// No collaborator attached: a sensor node is a no-op.
			w.advanceFrom(wk, c, n.Next)
			return
		}
		c.SensorState = sensorWaiting
		wk.SetActivity(ActivityWorking)
		ch := make(chan sensorResult, 1)
		c.sensorCh = ch
		category := n.ParamString("target")
		go func(fn SensorFunc) {
			// The mailbox is buffered and cursor-local, so this send
			// cannot block and stays harmless if the worker is torn
			// down while the call is in flight.
			v, err := fn(category)
			if err != nil {
				ch <- sensorResult{msg: "sensor error: " + err.Error(), failed: true}
				return
			}
			ch <- sensorResult{msg: v}
		}(w.sensorFn)

	case sensorWaiting:
		select {
		case res := <-c.sensorCh:
			if res.failed {
				w.failNode(wk, "sensor", protocol.ErrSensor, res.msg, nowTick)
			}
			w.logLine(wk, res.msg, nowTick)
			c.SensorState = sensorDone
		default:
			// Still in flight; ticks keep elapsing for everyone else.
		}

	case sensorDone:
		c.SensorState = sensorIdle
		wk.SetActivity(ActivityIdle)
		w.advanceFrom(wk, c, n.Next)
	}
}
