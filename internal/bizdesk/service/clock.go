package service

import "time"

// Clock returns the current time. A nil Clock uses time.Now.
type Clock func() time.Time

// now is UTC at millisecond precision, the resolution the store keeps.
func (c Clock) now() time.Time {
	t := time.Now()
	if c != nil {
		t = c()
	}
	return t.UTC().Truncate(time.Millisecond)
}
