package world

import (
	"fmt"
	"sort"
	"sync/atomic"

	"gridhive.ai/internal/sim/scenario"
	"gridhive.ai/internal/sim/tuning"
)

// SensorFunc is the injected external sensing collaborator. It runs off the
// tick goroutine; the executor polls for its result and never blocks on it.
type SensorFunc func(entityCategory string) (string, error)

// LogSink receives log-node output and sensor/placement confirmations.
type LogSink func(message string)

// TickLogger persists one entry per tick (assignments + digest) for replay.
type TickLogger interface {
	WriteTick(TickLogEntry) error
}

type World struct {
	cfg WorldConfig
	tun tuning.Tuning

	tick atomic.Uint64

	workers map[string]*Worker
	clients map[string]*clientState

	entities map[string]*Entity
	items    map[string]*ItemEntity
	itemsAt  map[Vec2i][]string

	walls map[Vec2i]bool

	// Backend-processing flag read by the ifelse "processing_done"
	// condition; set through the runtime API when the planner's external
	// processing completes.
	backendDone bool

	sensorFn SensorFunc
	logSink  LogSink

	// Run loop channels.
	join    chan JoinRequest
	leave   chan string
	assign  chan AssignRequest
	control chan ControlRequest
	stop    chan struct{}

	tickLogger TickLogger
	metrics    atomic.Value // WorldMetrics

	nextWorkerNum atomic.Uint64
	nextEntityNum atomic.Uint64
	nextItemNum   atomic.Uint64
}

type clientState struct {
	Out chan []byte
}

func New(cfg WorldConfig, tun tuning.Tuning) (*World, error) {
	cfg.normalize()
	if err := tun.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:      cfg,
		tun:      tun,
		workers:  map[string]*Worker{},
		clients:  map[string]*clientState{},
		entities: map[string]*Entity{},
		items:    map[string]*ItemEntity{},
		itemsAt:  map[Vec2i][]string{},
		walls:    map[Vec2i]bool{},
		join:     make(chan JoinRequest, 16),
		leave:    make(chan string, 16),
		assign:   make(chan AssignRequest, 64),
		control:  make(chan ControlRequest, 64),
		stop:     make(chan struct{}),
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

// ApplyScenario seeds the grid from a static layout. Intended to run once,
// before the tick loop starts.
func (w *World) ApplyScenario(s scenario.Scenario) error {
	if s.Width > 0 {
		w.cfg.Width = s.Width
	}
	if s.Height > 0 {
		w.cfg.Height = s.Height
	}
	for _, r := range s.Walls {
		for x := r.X; x < r.X+r.W; x++ {
			for y := r.Y; y < r.Y+r.H; y++ {
				w.walls[Vec2i{X: x, Y: y}] = true
			}
		}
	}
	for _, b := range s.Buildings {
		e := w.SpawnEntity(b.Category, Vec2i{X: b.X, Y: b.Y})
		if e == nil {
			return fmt.Errorf("cannot place building %s at (%d,%d)", b.Category, b.X, b.Y)
		}
		for item, n := range b.Inventory {
			for i := 0; i < n; i++ {
				e.AddItem(item)
			}
		}
	}
	for _, it := range s.Items {
		w.spawnItem(it.Type, Vec2i{X: it.X, Y: it.Y})
	}
	for _, spec := range s.Workers {
		w.addWorker(spec.Name, Vec2i{X: spec.X, Y: spec.Y})
	}
	return nil
}

// SetSensor attaches the external sensing collaborator. A nil sensor turns
// sensor nodes into no-ops that advance immediately.
func (w *World) SetSensor(fn SensorFunc) { w.sensorFn = fn }

// SetLogSink attaches the external log callback.
func (w *World) SetLogSink(sink LogSink) { w.logSink = sink }

// SetTickLogger attaches the persistence writer for per-tick entries.
func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) inBounds(p Vec2i) bool {
	return p.X >= 0 && p.X < w.cfg.Width && p.Y >= 0 && p.Y < w.cfg.Height
}

// IsWalkable reports whether a worker may stand on the cell: in bounds, not
// a wall, not occupied by a building.
func (w *World) IsWalkable(p Vec2i) bool {
	if !w.inBounds(p) || w.walls[p] {
		return false
	}
	for _, e := range w.entities {
		if e.Pos == p {
			return false
		}
	}
	return true
}

// cellFree is IsWalkable plus "no worker standing there"; used when placing
// new entities so they never spawn on top of somebody.
func (w *World) cellFree(p Vec2i) bool {
	if !w.IsWalkable(p) {
		return false
	}
	for _, wk := range w.workers {
		if wk.Pos == p {
			return false
		}
	}
	return true
}

// AdjacentFreeCell returns the first free 4-neighbour of p in a fixed scan
// order, for relocating a worker off a cell about to be built on.
func (w *World) AdjacentFreeCell(p Vec2i) (Vec2i, bool) {
	for _, d := range [4]Vec2i{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		q := Vec2i{X: p.X + d.X, Y: p.Y + d.Y}
		if w.cellFree(q) {
			return q, true
		}
	}
	return Vec2i{}, false
}

// sortedWorkers returns workers in ID order. Tick processing order is the
// only arbitration between workers contending for the same entity.
func (w *World) sortedWorkers() []*Worker {
	out := make([]*Worker, 0, len(w.workers))
	for _, wk := range w.workers {
		out = append(out, wk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) newWorkerID() string {
	return fmt.Sprintf("W%06d", w.nextWorkerNum.Add(1))
}

func (w *World) newEntityID() string {
	return fmt.Sprintf("B%06d", w.nextEntityNum.Add(1))
}

func (w *World) newItemID() string {
	return fmt.Sprintf("I%06d", w.nextItemNum.Add(1))
}
