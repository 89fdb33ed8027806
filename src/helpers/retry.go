package helpers

import (
	"context"
	"time"

	"spot-observer/src/logger"
)

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn once plus up to maxRetries more times, sleeping
// baseDelay * 2^attempt between attempts. before is called ahead of every
// retry (not the first attempt) and may be nil. It stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, before func(attempt int), fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * (1 << (attempt - 1))
			if log != nil {
				log.Warning("%s failed (attempt %d/%d): %v. Retrying in %v", operation, attempt, maxRetries+1, lastErr, delay)
			}
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(delay):
			}
			if before != nil {
				before(attempt)
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}
