package world

import "gridhive.ai/internal/protocol"

// ActivityState is a coarse label for external observers (renderer/UI).
// It has no effect on execution.
type ActivityState string

const (
	ActivityIdle     ActivityState = "IDLE"
	ActivityMoving   ActivityState = "MOVING"
	ActivityWorking  ActivityState = "WORKING"
	ActivityConfused ActivityState = "CONFUSED"
	ActivityHappy    ActivityState = "HAPPY"
	ActivityAtNode   ActivityState = "AT_NODE"
	ActivityDormant  ActivityState = "DORMANT"
)

// Worker is one autonomous agent. The executor owns Program; everything
// else is the minimal state contract it reads and mutates.
type Worker struct {
	ID   string
	Name string

	Pos     Vec2i
	PrevPos Vec2i

	// Path is the queue of cells remaining to traverse. Progress is the
	// fractional advance toward Path[0], in [0,1).
	Path     []Vec2i
	Progress float64

	// Interpolated sub-cell position, recomputed every tick for smooth
	// rendering. Presentation-adjacent but part of the public contract:
	// UI collaborators read it.
	RenderX float64
	RenderY float64

	// Carried is the item type in the single carried-item slot; "" means
	// empty-handed.
	Carried string

	Activity ActivityState

	// Branch is a deferred conditional fork evaluated once the current
	// path is exhausted at the recorded cell.
	Branch *PendingBranch

	// Program is the executor cursor; nil when no graph is assigned.
	Program *Cursor

	Events []protocol.Event
}

// PendingBranch lets a conditional fork be inserted transparently mid-route:
// the movement system, not the ifelse handler, resolves it when the worker
// arrives at the recorded cell.
type PendingBranch struct {
	At        Vec2i
	Condition string
	Value     string
	TruePath  []Vec2i
	FalsePath []Vec2i
}

func (wk *Worker) SetActivity(s ActivityState) {
	wk.Activity = s
}

// StartPath hands a path to the movement system and flips the worker into
// the moving state.
func (wk *Worker) StartPath(cells []Vec2i) {
	wk.PrevPos = wk.Pos
	wk.Path = cells
	wk.Progress = 0
	if len(cells) > 0 {
		wk.SetActivity(ActivityMoving)
	}
}

func (wk *Worker) IsMoving() bool {
	return len(wk.Path) > 0
}

func (wk *Worker) AddEvent(e protocol.Event) {
	wk.Events = append(wk.Events, e)
}

func (wk *Worker) TakeEvents() []protocol.Event {
	ev := wk.Events
	wk.Events = nil
	return ev
}

func (w *World) addWorker(name string, pos Vec2i) *Worker {
	if name == "" {
		name = "worker"
	}
	wk := &Worker{
		ID:       w.newWorkerID(),
		Name:     name,
		Pos:      pos,
		PrevPos:  pos,
		RenderX:  float64(pos.X),
		RenderY:  float64(pos.Y),
		Activity: ActivityDormant,
	}
	w.workers[wk.ID] = wk
	return wk
}

// spawnPos finds a free cell for a joining worker, scanning out from the
// grid centre deterministically.
func (w *World) spawnPos() Vec2i {
	c := Vec2i{X: w.cfg.Width / 2, Y: w.cfg.Height / 2}
	if w.cellFree(c) {
		return c
	}
	for r := 1; r < w.cfg.Width+w.cfg.Height; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if Chebyshev(Vec2i{}, Vec2i{X: dx, Y: dy}) != r {
					continue
				}
				p := Vec2i{X: c.X + dx, Y: c.Y + dy}
				if w.cellFree(p) {
					return p
				}
			}
		}
	}
	return c
}
