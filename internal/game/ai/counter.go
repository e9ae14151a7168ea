package ai

// LeakyCounter is a running estimate that increments on observed events and
// decays geometrically on every sample.
type LeakyCounter struct {
	Value float64
	Decay float64
}

// Sample increments the counter when observed is true, then decays it.
func (c *LeakyCounter) Sample(observed bool) {
	if observed {
		c.Value++
	}
	c.Value *= c.Decay
}
