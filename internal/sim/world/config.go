package world

type WorldConfig struct {
	ID         string
	TickRateHz int
	Width      int
	Height     int

	// Seed identifies a recorded run. The sim itself is deterministic
	// without randomness, but the seed is advertised in WELCOME and folded
	// into the state digest, so a replay started with the wrong seed fails
	// the digest comparison on the first tick.
	Seed int64
}

func (c *WorldConfig) normalize() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 10
	}
	if c.Width <= 0 {
		c.Width = 64
	}
	if c.Height <= 0 {
		c.Height = 64
	}
}
