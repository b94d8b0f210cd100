package resolver

import "time"

// Clock abstracts the retry delay so tests can drive time explicitly.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// RealClock returns a Clock backed by the runtime timer.
func RealClock() Clock {
	return realClock{}
}
