package world

// WorldMetrics is a point-in-time snapshot published after every tick.
type WorldMetrics struct {
	Tick         uint64      `json:"tick"`
	Workers      int         `json:"workers"`
	Clients      int         `json:"clients"`
	ProgramsDone int         `json:"programs_done"`
	QueueDepths  QueueDepths `json:"queue_depths"`
	StepMS       float64     `json:"step_ms"`
}

type QueueDepths struct {
	Join    int `json:"join"`
	Leave   int `json:"leave"`
	Assign  int `json:"assign"`
	Control int `json:"control"`
}

func (w *World) Metrics() WorldMetrics {
	m, _ := w.metrics.Load().(WorldMetrics)
	return m
}
