package fetcher

import (
	"context"
	"fmt"
	"time"
)

// retry runs fn up to attempts times, sleeping backoff(n) before retry n.
// It returns nil on the first success, otherwise the last error.
func retry(ctx context.Context, attempts int, backoff func(int) time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if delay := backoff(attempt - 1); delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
