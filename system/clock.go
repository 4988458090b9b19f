package system

// Clock supplies the frame time for each step. DeltaTime is never negative.
type Clock interface {
	DeltaTime() float64
}

// FixedClock always reports the same step.
type FixedClock struct {
	Step float64
}

// NewFixedClock returns a clock stepping at tickRate ticks per second. A
// non-positive rate yields a clock that never advances.
func NewFixedClock(tickRate int) FixedClock {
	if tickRate <= 0 {
		return FixedClock{}
	}
	return FixedClock{Step: 1 / float64(tickRate)}
}

func (c FixedClock) DeltaTime() float64 {
	if c.Step < 0 {
		return 0
	}
	return c.Step
}
