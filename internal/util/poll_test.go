package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollDefaultsToSingleTry(t *testing.T) {
	var calls int

	err := Poll(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, PollOptions{})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestPollRetriesUntilSuccess(t *testing.T) {
	var calls int
	errBoom := errors.New("temporary failure")

	err := Poll(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	}, PollOptions{
		Tries: 5,
		Delay: time.Millisecond,
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestPollReturnsAfterMaxAttempts(t *testing.T) {
	var calls int
	errBoom := errors.New("permanent failure")

	err := Poll(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, PollOptions{
		Tries: 3,
		Delay: time.Millisecond,
	})

	require.Error(t, err)
	require.ErrorContains(t, err, "after 3 attempts")
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 3, calls)
}

func TestPollStopsOnPermanentError(t *testing.T) {
	var calls int
	errFailed := errors.New("operation failed")

	err := Poll(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errFailed)
	}, PollOptions{
		Tries: 5,
		Delay: time.Millisecond,
	})

	require.Equal(t, errFailed, err)
	require.Equal(t, 1, calls)
	require.NoError(t, Permanent(nil))
}

func TestPollTimeout(t *testing.T) {
	var calls int
	errBoom := errors.New("timeout failure")

	err := Poll(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, PollOptions{
		Delay:   20 * time.Millisecond,
		Timeout: 30 * time.Millisecond,
	})

	require.Error(t, err)
	require.ErrorContains(t, err, "context deadline exceeded")
	require.GreaterOrEqual(t, calls, 1)
}

func TestPollRespectsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Poll(ctx, func(context.Context) error { return errors.New("no-op") }, PollOptions{Delay: time.Millisecond})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPollBinaryExponentialBackoff(t *testing.T) {
	var (
		calls int
		last  time.Time
		gaps  []time.Duration
	)
	err := Poll(context.Background(), func(context.Context) error {
		now := time.Now()
		if calls > 0 {
			gaps = append(gaps, now.Sub(last))
		}
		last = now
		calls++
		if calls >= 4 {
			return nil
		}
		return errors.New("simulated failure")
	}, PollOptions{
		Tries:    5,
		MaxDelay: 20 * time.Millisecond,
	})

	require.NoError(t, err)
	require.Equal(t, 4, calls)
	require.Len(t, gaps, 3)
	for _, g := range gaps {
		require.GreaterOrEqual(t, g, 20*time.Millisecond)
	}
}
