package watch

import (
	"context"
	"time"
)

// maxRetryDelay bounds the backoff growth; a long outage otherwise inflates
// the delay past the sweep interval itself.
const maxRetryDelay = 30 * time.Second

// withRetry runs fn until it succeeds, sleeping with capped doubling
// backoff between attempts. maxRetries counts the extra attempts after the
// first.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = nextRetryDelay(delay)
	}
}

func nextRetryDelay(delay time.Duration) time.Duration {
	delay *= 2
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
