package http

import (
	"context"
	"time"
)

// fetchFunc is the signature for a fetch function.
type fetchFunc func(ctx context.Context, url string) (string, error)

// retryLogFunc is called before each retry attempt.
type retryLogFunc func(url string, attempt int, err error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// fetchWithRetry calls fetch up to len(delays)+1 times, waiting delays[i]
// before retry i. Only errors accepted by isRetryable are retried.
func fetchWithRetry(ctx context.Context, url string, fetch fetchFunc, logf retryLogFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if logf != nil {
			logf(url, attempt+2, err)
		}

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	return "", lastErr
}
