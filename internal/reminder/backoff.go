package reminder

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff spaces out retries for a failing reminder. Retries only
// fire on scan passes, so the base is one poll interval's worth of delay.
// attempt=1 => 1m, attempt=2 => 2m, attempt=3 => 4m, capped at 30m.
func ExponentialBackoff(attempt int) time.Duration {
	base := time.Minute
	capDelay := 30 * time.Minute

	if attempt < 1 {
		attempt = 1
	}

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))

	if delay > capDelay {
		delay = capDelay
	}

	// jitter so restarts don't retry every failed task at the same instant
	delay += time.Duration(rand.Intn(5000)) * time.Millisecond
	return delay
}
