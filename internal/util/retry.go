// ABOUTME: Exponential backoff for retrying remote API calls
// ABOUTME: Doubles a base delay per attempt up to a cap, with jitter
package util

import (
	"math/rand/v2"
	"time"
)

// DefaultBackoffCap bounds the retry delay when the caller passes no cap
const DefaultBackoffCap = 30 * time.Second

// Backoff returns the delay before retry number attempt: the base delay,
// doubled per further attempt, bounded by limit (DefaultBackoffCap when
// limit <= 0), with ±25% jitter so concurrent clients spread out.
// Attempt 0 and negative attempts return 0 (first call, no wait).
func Backoff(base time.Duration, attempt int, limit time.Duration) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}
	if limit <= 0 {
		limit = DefaultBackoffCap
	}

	delay := base
	for i := 1; i < attempt && delay < limit; i++ {
		delay *= 2
	}
	if delay > limit {
		delay = limit
	}

	jitter := time.Duration(rand.Int64N(int64(delay)/2)) - delay/4
	return delay + jitter
}
