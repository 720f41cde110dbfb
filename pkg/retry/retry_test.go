package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("connection refused")

func fast() Option { return WithInitialDelay(time.Millisecond) }

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	var retried []int

	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, fast(), WithOnRetry(func(attempt int, _ error, _ time.Duration) {
		retried = append(retried, attempt)
	}))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	}, fast(), WithMaxAttempts(4))

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 4, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	denied := errors.New("password authentication failed")

	err := Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(denied)
	}, fast())

	assert.Equal(t, denied, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryIf(t *testing.T) {
	calls := 0
	other := errors.New("syntax error")

	err := Do(context.Background(), func(context.Context) error {
		calls++
		return other
	}, fast(), WithRetryIf(func(err error) bool { return errors.Is(err, errTransient) }))

	assert.Equal(t, other, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errTransient
	}, WithInitialDelay(time.Hour))

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}
	assert.Equal(t, 100*time.Millisecond, cfg.delay(1))
	assert.Equal(t, 400*time.Millisecond, cfg.delay(3))
	assert.Equal(t, time.Second, cfg.delay(10))
}
