package services

import "time"

// Clock supplies the current time. Injectable so deadline-driven behavior
// (offer expiry, overdue flagging) is testable without real waiting.
type Clock func() time.Time

// SystemClock returns the wall-clock time in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

func orSystemClock(clock Clock) Clock {
	if clock == nil {
		return SystemClock
	}

	return clock
}
