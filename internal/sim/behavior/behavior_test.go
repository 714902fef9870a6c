package behavior

import "testing"

func TestGraph_ByIDRoundTrip(t *testing.T) {
	nodes := []Node{
		{ID: 1, Type: TypeMove, Next: 7},
		{ID: 7, Type: TypePickup, Next: 3},
		{ID: 3, Type: TypeDrop},
	}
	g := NewGraph(nodes)

	if g.Len() != 3 {
		t.Fatalf("len=%d want 3", g.Len())
	}
	seen := map[int]int{}
	for _, want := range nodes {
		got, ok := g.ByID(want.ID)
		if !ok {
			t.Fatalf("ByID(%d) missing", want.ID)
		}
		if got.ID != want.ID || got.Type != want.Type || got.Next != want.Next {
			t.Fatalf("ByID(%d) = %+v want %+v", want.ID, got, want)
		}
		seen[want.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("id %d seen %d times", id, n)
		}
	}
	if _, ok := g.ByID(99); ok {
		t.Fatalf("ByID(99) should not resolve")
	}
}

func TestGraph_FirstOfType(t *testing.T) {
	g := NewGraph([]Node{
		{ID: 1, Type: TypeMove},
		{ID: 2, Type: TypeLoop},
		{ID: 3, Type: TypeLoop},
	})
	if i := g.FirstOfType(TypeLoop); i != 1 {
		t.Fatalf("FirstOfType(loop)=%d want 1", i)
	}
	if i := g.FirstOfType(TypeSensor); i != -1 {
		t.Fatalf("FirstOfType(sensor)=%d want -1", i)
	}
}

func TestGraph_IndexOfZeroNeverResolves(t *testing.T) {
	g := NewGraph([]Node{{ID: 1, Type: TypeLog}})
	if _, ok := g.IndexOf(0); ok {
		t.Fatalf("id 0 must mean absent")
	}
}

func TestNode_ParamCoercion(t *testing.T) {
	n := Node{Params: map[string]any{
		"count":   float64(3), // JSON numbers decode as float64
		"ticks":   "12",
		"message": "hi",
		"flag":    true,
		"junk":    []any{1, 2},
	}}

	if got := n.ParamInt("count"); got != 3 {
		t.Fatalf("count=%d want 3", got)
	}
	if got := n.ParamInt("ticks"); got != 12 {
		t.Fatalf("ticks=%d want 12", got)
	}
	if got := n.ParamInt("missing"); got != 0 {
		t.Fatalf("missing int=%d want 0", got)
	}
	if got := n.ParamInt("junk"); got != 0 {
		t.Fatalf("junk int=%d want 0", got)
	}
	if got := n.ParamString("message"); got != "hi" {
		t.Fatalf("message=%q", got)
	}
	if got := n.ParamString("missing"); got != "" {
		t.Fatalf("missing string=%q want empty", got)
	}
	if !n.ParamBool("flag") || n.ParamBool("missing") {
		t.Fatalf("bool coercion wrong")
	}
	if !n.HasParam("junk") || n.HasParam("missing") {
		t.Fatalf("HasParam wrong")
	}
}

func TestNode_NilParamsSafe(t *testing.T) {
	var n Node
	if n.ParamInt("x") != 0 || n.ParamString("x") != "" || n.ParamBool("x") || n.HasParam("x") {
		t.Fatalf("nil params must coerce to zero values")
	}
}
