package util

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollFunc is the function executed by Poll. A nil error means done; any other error is retried
// unless it was wrapped with Permanent.
type PollFunc func(ctx context.Context) error

// PollOptions configures the behavior of the Poll function.
type PollOptions struct {
	// Tries is the maximum number of times to try the function.
	// If Tries is 0, it will retry until Timeout is reached.
	Tries int
	// Delay is the time to wait between retries.
	// If Delay is 0, binary exponential backoff is used, starting at 2 seconds.
	Delay time.Duration
	// MaxDelay caps the backoff. Defaults to 30 seconds.
	MaxDelay time.Duration
	// Timeout is the maximum total time to spend retrying.
	// If Timeout is 0, there is no time limit.
	Timeout time.Duration
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as final: Poll returns it right away.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Poll executes fn until it returns no error, returns a permanent error, or until the configured
// number of tries, the timeout or the context ends it.
func Poll(ctx context.Context, fn PollFunc, opts PollOptions) error {
	var lastErr error

	// neither tries nor timeout means a single try
	if opts.Tries == 0 && opts.Timeout == 0 {
		opts.Tries = 1
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	wait := opts.Delay
	if wait <= 0 {
		wait = min(2*time.Second, opts.MaxDelay)
	}
	for i := 0; opts.Tries == 0 || i < opts.Tries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if opts.Tries > 0 && i == opts.Tries-1 {
			break
		}

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
		if opts.Delay <= 0 {
			wait = min(wait*2, opts.MaxDelay)
		}
	}

	if opts.Tries > 0 {
		return fmt.Errorf("after %d attempts, last error: %w", opts.Tries, lastErr)
	}
	return fmt.Errorf("last error: %w", lastErr)
}
