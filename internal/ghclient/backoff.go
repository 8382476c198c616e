package ghclient

import (
	"context"
	"errors"
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 30 * time.Second
	maxAttempts = 6
)

// OnWait is invoked before each retry delay with the whole seconds the
// caller is about to wait, so a progress channel can advertise the stall.
type OnWait func(secondsRemaining int)

// GraphQLWithBackoff retries query on transient network errors and on a
// RATE_LIMITED GraphQL error, doubling the delay from backoffBase up to
// backoffCap, for up to maxAttempts attempts. After the last attempt it
// returns the final error unchanged, letting the caller (the sync engine)
// decide whether to treat the run as partial.
func (c *Client) GraphQLWithBackoff(ctx context.Context, query string, variables map[string]any, result any, onWait OnWait) error {
	delay := backoffBase
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = c.query(ctx, query, variables, result)
		if lastErr == nil {
			return nil
		}
		if IsProjectNotFound(lastErr) {
			return lastErr
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		wait := delay
		if onWait != nil {
			onWait(int(wait / time.Second))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay *= 2
		if delay > backoffCap {
			delay = backoffCap
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsRateLimited(err) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
