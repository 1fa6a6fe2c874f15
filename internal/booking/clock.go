package booking

import "time"

// Clock abstracts wall-clock reads so tests can pin "now".  The engine
// validates start times and cancellation deadlines against it.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }
