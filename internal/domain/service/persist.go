package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const saveAttempts = 3

// retrySave runs save until it succeeds, the attempts run out or ctx is done.
func retrySave(ctx context.Context, save func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, save(ctx)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(saveAttempts))
	return err
}
