package completion

import (
	"time"
)

// jitterDivisor sizes the jitter window at 10% of the computed delay.
const jitterDivisor = 10

// backoffDelay computes the exponential backoff for the given retry attempt
// (1-based), capped at maxDelay, with 10% jitter centered on the base value
// so synchronized callers drift apart.
func backoffDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			delay = maxDelay
			break
		}
	}

	jitterRange := delay / jitterDivisor
	if jitterRange > 0 {
		jitter := time.Duration(time.Now().UnixNano() % int64(jitterRange))
		delay += jitter - jitterRange/2
	}

	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
