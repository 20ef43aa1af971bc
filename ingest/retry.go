package ingest

import (
	"context"
	"time"

	"github.com/fwojciec/sourcebook"
)

// DefaultRetryDelays returns the standard backoff delays between generation
// attempts: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// GenerateWithRetryDelays calls the generator with backoff between attempts.
// Only EUNAVAILABLE failures are retried; auth and validation errors fail
// immediately. The total number of attempts is len(delays)+1.
func GenerateWithRetryDelays(ctx context.Context, g sourcebook.Generator, prompt string, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := g.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if sourcebook.ErrorCode(err) != sourcebook.EUNAVAILABLE {
			break
		}
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
