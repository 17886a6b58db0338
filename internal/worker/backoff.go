package worker

import "time"

const (
	baseRetryDelay = 5 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// RetryDelay returns the requeue delay after a failed attempt (1-based):
// 5s, 10s, 20s, then capped at 30s.
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		return maxRetryDelay
	}
	delay := baseRetryDelay << (attempt - 1)
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
