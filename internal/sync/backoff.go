package sync

import "time"

const (
	// BaseRetryDelay is the delay before the first retry attempt
	BaseRetryDelay = 30 * time.Second

	// MaxRetryDelay caps the exponential backoff
	MaxRetryDelay = time.Hour

	// MaxRetryCount is the retry budget per sync log entry. Beyond it the
	// entry stays in error until an operator re-triggers the sync.
	MaxRetryCount = 6
)

// NextRetryDelay computes the backoff delay for the attempt after
// retryCount prior failures: base * 2^retryCount, capped at MaxRetryDelay.
func NextRetryDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}

	delay := BaseRetryDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}

	return delay
}
