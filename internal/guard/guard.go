// Package guard wraps mutating API calls with the expired-token
// recovery protocol: on the first failure caused by an expired security
// token the token is refreshed and the call retried exactly once.
package guard

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"osusume/internal/core"
)

const (
	// maxAttempts caps the retry at one, so a persistently failing
	// backend can never loop.
	maxAttempts = 2

	// retryDelay gives the token-refresh side effect time to land
	// before the retry fires.
	retryDelay = 500 * time.Millisecond
)

var (
	tokenRenewals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "osusume_token_renewals_total",
		Help: "The number of security token renewals triggered by expiry.",
	})
)

// RefreshFunc re-fetches the security token. It is the only side
// effect the guard performs besides invoking op.
type RefreshFunc func(ctx context.Context) error

// Call runs op, recovering once from a token expiry by invoking
// refresh, waiting retryDelay, and retrying. Any other failure, or a
// failure on the retry, propagates unchanged. A session expiry is not
// recoverable and falls through like any other error.
func Call[T any](ctx context.Context, refresh RefreshFunc, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}

		if !errors.Is(err, core.ErrTokenExpired) || attempt >= maxAttempts {
			return zero, err
		}

		tokenRenewals.Inc()

		if refreshErr := refresh(ctx); refreshErr != nil {
			return zero, refreshErr
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// Do is Call for operations without a result.
func Do(ctx context.Context, refresh RefreshFunc, op func(ctx context.Context) error) error {
	_, err := Call(ctx, refresh, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
