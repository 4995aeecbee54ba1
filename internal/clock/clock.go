package clock

import "time"

// Clock abstracts time for services that order events by timestamp.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return systemClock{}
}

var _ Clock = (*FakeClock)(nil)
