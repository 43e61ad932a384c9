package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/copallet/copallet-api/internal/domains/shipments/application"
)

// DefaultConflictRetries is how often a command is re-run after a storage conflict.
const DefaultConflictRetries = 3

func newConflictBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

// withConflictRetry re-runs op while it fails with application.ErrConflict. Every other
// outcome, success included, ends the loop. Once retries are spent the last conflict is returned.
func withConflictRetry[T any](ctx context.Context, retries int, op func(context.Context) (T, error)) (T, error) {
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newConflictBackOff(), uint64(retries)), ctx)
	return backoff.RetryWithData(func() (T, error) {
		result, err := op(ctx)
		if err != nil && !errors.Is(err, application.ErrConflict) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, policy)
}
