package retry

import (
	"context"
	"time"
)

// Fixed runs fn up to attempts times, sleeping delay between failed tries.
// Every attempt's error is replaced by the next one; the last error comes
// back when all attempts are spent. Context cancellation cuts the wait short.
func Fixed(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
