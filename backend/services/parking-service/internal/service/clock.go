package service

import "time"

// Clock supplies the current instant. Server-assigned times go through it so
// tests can pin the clock and client clock skew never reaches billing.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock {
	return systemClock{}
}
