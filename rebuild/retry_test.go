package rebuild

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first attempt", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("succeeds after failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			if attempts < 3 {
				return assert.AnError
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			return assert.AnError
		}, 3, time.Millisecond)
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 3, attempts)
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})

	t.Run("cancelled before first attempt", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		attempts := 0
		err := RetryWithBackoff(cancelled, func() error {
			attempts++
			return nil
		}, 3, time.Millisecond)
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, attempts)
	})

	t.Run("cancelled during backoff", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)

		attempts := 0
		done := make(chan error, 1)
		go func() {
			done <- RetryWithBackoff(cancelled, func() error {
				attempts++
				return assert.AnError
			}, 3, time.Minute)
		}()

		// Let the first attempt fail, then cancel during the long sleep.
		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, 1, attempts)
		case <-time.After(5 * time.Second):
			t.Fatal("retry did not observe cancellation")
		}
	})
}
