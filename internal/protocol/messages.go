package protocol

// HELLO (planner -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PlannerName     string            `json:"planner_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> planner)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	WorkerID        string      `json:"worker_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	Width      int   `json:"width"`
	Height     int   `json:"height"`
	Seed       int64 `json:"seed"`
}

// PROGRAM (planner -> server): assign a behavior graph to a worker.
// An empty worker_id targets the sender's own worker.
type ProgramMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	WorkerID        string     `json:"worker_id,omitempty"`
	Program         ProgramDoc `json:"program"`
}

// ProgramDoc is the wire shape of a behavior graph. The core performs no
// validation beyond optional-field defaulting; schema validation is a
// transport concern.
type ProgramDoc struct {
	Nodes []NodeDoc `json:"nodes"`
}

type NodeDoc struct {
	ID      int            `json:"id"`
	Type    string         `json:"type"`
	Label   string         `json:"label,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Next    int            `json:"next,omitempty"`
	AltNext int            `json:"alt_next,omitempty"`
}

// CONTROL (planner -> server)
type ControlMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Op              string `json:"op"` // "stop" | "backend_done"
	WorkerID        string `json:"worker_id,omitempty"`
}

const (
	ControlStop        = "stop"
	ControlBackendDone = "backend_done"
)

// ERROR (server -> planner): an inbound message was rejected at the
// boundary. Code is one of the E_* vocabulary.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

// OBS (server -> planner), one per tick per attached worker.
type ObsMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	WorkerID        string        `json:"worker_id"`
	Self            SelfState     `json:"self"`
	Program         ProgramStatus `json:"program"`
	Events          []Event       `json:"events,omitempty"`
}

type SelfState struct {
	Pos         [2]int     `json:"pos"`
	Render      [2]float64 `json:"render"`
	Activity    string     `json:"activity"`
	CarriedItem string     `json:"carried_item,omitempty"`
	Moving      bool       `json:"moving"`
}

// ProgramStatus reports the executor cursor for external observers.
type ProgramStatus struct {
	Assigned bool `json:"assigned"`
	Done     bool `json:"done"`
	NodeID   int  `json:"node_id,omitempty"`
}

// Event is a loosely-typed per-worker event (log lines, action results).
type Event map[string]any
