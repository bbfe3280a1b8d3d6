package services

import (
	"time"
)

// Clock supplies the current time to status derivations and sync logic,
// so sweeps and grid computations are deterministic in tests.
type Clock func() time.Time

// SystemClock is the production clock
func SystemClock() time.Time {
	return time.Now()
}
