package systems

// ColorCycle times how often the pointer colour is regenerated.
type ColorCycle struct {
	timer float64
}

// Advance adds dt*speed to the timer and reports whether it passed 1, in
// which case it wraps back into [0, 1).
func (c *ColorCycle) Advance(dt, speed float64) bool {
	c.timer += dt * speed
	if c.timer < 1 {
		return false
	}
	c.timer = wrapUnit(c.timer)
	return true
}
