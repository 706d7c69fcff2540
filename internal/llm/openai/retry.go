package openai

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

// withRetry runs fn under exponential backoff. Only throttling, 5xx and
// transport errors are retried; everything else stops immediately.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.Retry.InitialInterval
	eb.MaxInterval = c.cfg.Retry.MaxInterval
	eb.MaxElapsedTime = 0
	eb.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.cfg.Retry.MaxAttempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("llm.retry",
			"op", op, "attempt", attempt, "wait_ms", wait.Milliseconds(), "error", err)
	})
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var he *llm.HTTPError
	if errors.As(err, &he) {
		return he.Retryable()
	}
	var de *decodeError
	return !errors.As(err, &de)
}
