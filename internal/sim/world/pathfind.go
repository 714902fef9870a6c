package world

// FindPath runs a breadth-first search over walkable cells from `from` to
// any cell adjacent to `to` (or `to` itself when walkable). It returns the
// cells to traverse, excluding the start. A nil result means "already there
// or unreachable"; callers treat both as an immediate completion.
func (w *World) FindPath(from, to Vec2i) []Vec2i {
	if Chebyshev(from, to) <= 1 {
		return nil
	}

	goal := func(p Vec2i) bool {
		if p == to {
			return true
		}
		return Chebyshev(p, to) <= 1
	}

	type qent struct {
		pos Vec2i
	}
	prev := map[Vec2i]Vec2i{from: from}
	queue := []qent{{pos: from}}
	var end Vec2i
	found := false

	for len(queue) > 0 {
		cur := queue[0].pos
		queue = queue[1:]
		if goal(cur) && cur != from {
			end = cur
			found = true
			break
		}
		for _, d := range [4]Vec2i{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			next := Vec2i{X: cur.X + d.X, Y: cur.Y + d.Y}
			if _, seen := prev[next]; seen {
				continue
			}
			if !w.IsWalkable(next) {
				continue
			}
			prev[next] = cur
			queue = append(queue, qent{pos: next})
		}
	}
	if !found {
		return nil
	}

	var path []Vec2i
	for p := end; p != from; p = prev[p] {
		path = append(path, p)
	}
	// Reverse into walk order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
