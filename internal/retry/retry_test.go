package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestPolicy_NextDelay(t *testing.T) {
	p := Policy{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, BackoffFactor: 2}

	assert.Equal(t, 10*time.Millisecond, p.NextDelay(0))
	assert.Equal(t, 10*time.Millisecond, p.NextDelay(1))
	assert.Equal(t, 20*time.Millisecond, p.NextDelay(2))
	assert.Equal(t, 40*time.Millisecond, p.NextDelay(3))
	assert.Equal(t, 50*time.Millisecond, p.NextDelay(4))
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), isTransient, func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), fastPolicy(5), isTransient, func(context.Context) error {
		calls++
		return permanent
	})

	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDo_GivesUp(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), isTransient, func(context.Context) error {
		calls++
		return errTransient
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, InitialDelay: time.Hour}

	err := Do(ctx, p, isTransient, func(context.Context) error {
		cancel()
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
}
