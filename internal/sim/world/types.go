package world

type Vec2i struct {
	X int
	Y int
}

func (v Vec2i) ToArray() [2]int { return [2]int{v.X, v.Y} }

func Manhattan(a, b Vec2i) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func Chebyshev(a, b Vec2i) int {
	dx := absInt(a.X - b.X)
	dy := absInt(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
