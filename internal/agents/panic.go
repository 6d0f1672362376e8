package agents

// Panic is kept in [0, 1]. Higher panic means faster, less careful movement
// and, at the top of the range, a chance to freeze when a hazard is met.

// ClampPanic limits v to the panic range.
func ClampPanic(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetPanic sets panic, clamped.
func (a *Agent) SetPanic(v float64) {
	a.Panic = ClampPanic(v)
}

// AddPanic adjusts panic by dv, clamped.
func (a *Agent) AddPanic(dv float64) {
	a.Panic = ClampPanic(a.Panic + dv)
}

// Panicked returns true once panic is high enough to show.
func (a *Agent) Panicked() bool {
	return a.Panic > 0.5
}
