package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithExponentialBackoff_Success(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	var retried []int

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	},
		WithInitialDelay(time.Millisecond),
		WithOnRetry(func(attempt int, _ error) { retried = append(retried, attempt) }),
	)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestWithExponentialBackoff_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return errors.New("persistent error")
	}, WithMaxRetries(3), WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.Contains(t, err.Error(), "persistent error")
	// MaxRetries counts retries after the first attempt
	assert.Equal(t, 4, attempts)
}

func TestWithExponentialBackoff_ContextCancellation(t *testing.T) {
	t.Parallel()
	attempts := 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithExponentialBackoff(ctx, func() error {
		attempts++
		return errors.New("error")
	}, WithInitialDelay(10*time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_FatalError(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return Fatal(errors.New("permission denied (publickey)"))
	}, WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_MaxDelayCapsGrowth(t *testing.T) {
	t.Parallel()
	attempts := 0
	start := time.Now()

	_ = WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return errors.New("error")
	},
		WithMaxRetries(4),
		WithInitialDelay(5*time.Millisecond),
		WithMultiplier(10),
		WithMaxDelay(10*time.Millisecond),
	)

	// 5ms + 10ms*3 with the cap, versus 5+50+500+5000ms without it
	assert.Equal(t, 5, attempts)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPoll_SucceedsImmediately(t *testing.T) {
	t.Parallel()
	calls := 0

	err := Poll(context.Background(), time.Hour, time.Minute, func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPoll_SucceedsEventually(t *testing.T) {
	t.Parallel()
	calls := 0

	err := Poll(context.Background(), time.Millisecond, time.Second, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPoll_Deadline(t *testing.T) {
	t.Parallel()
	probeErr := errors.New("connection refused")

	err := Poll(context.Background(), 5*time.Millisecond, 20*time.Millisecond, func(context.Context) error {
		return probeErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeadline)
	assert.ErrorIs(t, err, probeErr)
}

func TestPoll_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Poll(ctx, time.Second, time.Minute, func(context.Context) error {
		return errors.New("not yet")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoll_FatalStopsPolling(t *testing.T) {
	t.Parallel()
	calls := 0

	err := Poll(context.Background(), time.Millisecond, time.Minute, func(context.Context) error {
		calls++
		return Fatal(errors.New("curl: not found"))
	})

	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, calls)
}

func TestFatal(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Fatal(nil))

	original := errors.New("test error")
	err := Fatal(original)
	assert.True(t, IsFatal(err))
	assert.Equal(t, original.Error(), err.Error())
	assert.Same(t, original, errors.Unwrap(err))
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("regular"), false},
		{"fatal error", Fatal(errors.New("fatal")), true},
		{"joined fatal", errors.Join(Fatal(errors.New("base")), errors.New("context")), true},
		{"wrapped fatal", fmt.Errorf("context: %w", Fatal(errors.New("base"))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}
