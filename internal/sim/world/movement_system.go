package world

// systemMovement advances every worker with a non-empty path by the fixed
// per-tick speed, independently of the executor. On reaching 1.0 progress
// the worker consumes one path cell and snaps its grid position. When the
// path empties at a recorded branch cell, the branch condition is evaluated
// and the chosen sub-path (if any) continues without an idle transition.
func (w *World) systemMovement(nowTick uint64) {
	for _, wk := range w.sortedWorkers() {
		if len(wk.Path) > 0 {
			wk.Progress += w.tun.MoveSpeed
			for wk.Progress >= 1.0 && len(wk.Path) > 0 {
				wk.Progress -= 1.0
				wk.PrevPos = wk.Pos
				wk.Pos = wk.Path[0]
				wk.Path = wk.Path[1:]
			}
			if len(wk.Path) == 0 {
				wk.Progress = 0
				w.onPathExhausted(wk)
			}
		}
		wk.RenderX, wk.RenderY = w.renderPos(wk)
	}
}

func (w *World) onPathExhausted(wk *Worker) {
	if b := wk.Branch; b != nil {
		if wk.Pos == b.At {
			wk.Branch = nil
			wk.SetActivity(ActivityAtNode)
			sub := b.FalsePath
			if w.evalCondition(wk, b.Condition, b.Value) {
				sub = b.TruePath
			}
			if len(sub) > 0 {
				// Continue along the chosen fork; no idle transition.
				wk.PrevPos = wk.Pos
				wk.Path = append(wk.Path, sub...)
				wk.SetActivity(ActivityMoving)
				return
			}
		} else {
			// Path ended somewhere else; the recorded fork is stale.
			wk.Branch = nil
		}
	}
	wk.SetActivity(ActivityIdle)
}

// renderPos interpolates between the worker's grid position and the next
// path cell using the fractional progress.
func (w *World) renderPos(wk *Worker) (float64, float64) {
	if len(wk.Path) == 0 {
		return float64(wk.Pos.X), float64(wk.Pos.Y)
	}
	next := wk.Path[0]
	t := wk.Progress
	x := float64(wk.Pos.X) + (float64(next.X)-float64(wk.Pos.X))*t
	y := float64(wk.Pos.Y) + (float64(next.Y)-float64(wk.Pos.Y))*t
	return x, y
}
