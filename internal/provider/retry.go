package provider

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/coinsight/coinsight/internal/config"
)

// RetryObserver is notified once per attempt so callers can count retries
// without the provider importing the telemetry package.
type RetryObserver func(op string, attempt int, err error)

// Fetch runs op with bounded retries and exponential backoff. Each attempt
// gets its own timeout; the wait between attempts aborts as soon as ctx is
// cancelled. Non-retryable errors propagate immediately.
func Fetch[T any](ctx context.Context, log zerolog.Logger, pol config.RetryConfig, name string, obs RetryObserver, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := pol.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if pol.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, pol.AttemptTimeout)
		}
		out, err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if obs != nil {
			obs(name, attempt, err)
		}
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !Retryable(err) {
			log.Debug().Err(err).Str("op", name).Int("attempt", attempt).Msg("fetch failed, not retryable")
			return zero, err
		}
		if attempt == attempts {
			break
		}

		delay := backoffDelay(pol, attempt)
		log.Warn().Err(err).Str("op", name).Int("attempt", attempt).Dur("backoff", delay).Msg("fetch failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	log.Error().Err(lastErr).Str("op", name).Int("attempts", attempts).Msg("fetch exhausted retries")
	return zero, lastErr
}

// backoffDelay computes initial*factor^(attempt-1), capped at MaxDelay.
func backoffDelay(pol config.RetryConfig, attempt int) time.Duration {
	d := time.Duration(float64(pol.InitialDelay) * math.Pow(pol.BackoffFactor, float64(attempt-1)))
	if pol.MaxDelay > 0 && d > pol.MaxDelay {
		d = pol.MaxDelay
	}
	return d
}
