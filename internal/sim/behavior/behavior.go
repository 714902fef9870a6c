package behavior

import "strconv"

// NodeType tags one instruction kind. The set is closed: dispatch in the
// executor is a table over these tags, never inheritance.
type NodeType string

const (
	TypeSensor      NodeType = "sensor"
	TypeMove        NodeType = "move"
	TypePickup      NodeType = "pickup"
	TypeDrop        NodeType = "drop"
	TypeIfElse      NodeType = "ifelse"
	TypeLoop        NodeType = "loop"
	TypeWait        NodeType = "wait"
	TypeLog         NodeType = "log"
	TypePlaceEntity NodeType = "place_entity"
)

// Node is one instruction of a worker program. IDs are positive and unique
// within a graph; Next/AltNext of 0 mean "absent". Params are whatever the
// planner sent; handlers coerce permissively and never reject.
type Node struct {
	ID      int
	Type    NodeType
	Label   string
	Params  map[string]any
	Next    int
	AltNext int // ifelse only
}

// Graph is an immutable-after-construction ordered sequence of nodes.
// The first node is the conventional entry point.
type Graph struct {
	nodes []Node
	index map[int]int // id -> position in nodes
}

func NewGraph(nodes []Node) *Graph {
	g := &Graph{
		nodes: nodes,
		index: make(map[int]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			continue // first declaration wins
		}
		g.index[n.ID] = i
	}
	return g
}

func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// At returns the node at position i, or nil when i is out of range.
func (g *Graph) At(i int) *Node {
	if g == nil || i < 0 || i >= len(g.nodes) {
		return nil
	}
	return &g.nodes[i]
}

// ByID returns the node with the given id.
func (g *Graph) ByID(id int) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.nodes[i], true
}

// IndexOf resolves an id to its position. id 0 never resolves.
func (g *Graph) IndexOf(id int) (int, bool) {
	if g == nil || id == 0 {
		return -1, false
	}
	i, ok := g.index[id]
	return i, ok
}

// FirstOfType returns the position of the first node with the given type,
// or -1. The executor uses this as the loop-back fallback when a node has
// no explicit successor.
func (g *Graph) FirstOfType(t NodeType) int {
	if g == nil {
		return -1
	}
	for i := range g.nodes {
		if g.nodes[i].Type == t {
			return i
		}
	}
	return -1
}

// Param coercion: planner params are untrusted JSON values. Missing or
// mistyped fields default to the zero value rather than failing the node.

func (n *Node) ParamString(key string) string {
	if n == nil || n.Params == nil {
		return ""
	}
	if s, ok := n.Params[key].(string); ok {
		return s
	}
	return ""
}

func (n *Node) ParamInt(key string) int {
	if n == nil || n.Params == nil {
		return 0
	}
	switch v := n.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

func (n *Node) ParamBool(key string) bool {
	if n == nil || n.Params == nil {
		return false
	}
	if b, ok := n.Params[key].(bool); ok {
		return b
	}
	return false
}

// HasParam reports whether the planner supplied the key at all; used where
// presence changes meaning (explicit move coordinates vs. category lookup).
func (n *Node) HasParam(key string) bool {
	if n == nil || n.Params == nil {
		return false
	}
	_, ok := n.Params[key]
	return ok
}
