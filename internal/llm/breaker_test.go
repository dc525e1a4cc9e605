package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func newTestBreaker(threshold int) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(threshold, time.Minute, nil)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(2)

	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open breaker must not invoke fn")
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2)

	_ = cb.Call(func() error { return errBoom })
	_ = cb.Call(func() error { return nil })
	_ = cb.Call(func() error { return errBoom })
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, now := newTestBreaker(1)

	_ = cb.Call(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.State())

	*now = now.Add(2 * time.Minute)
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(1)

	_ = cb.Call(func() error { return errBoom })
	*now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, now := newTestBreaker(1)

	_ = cb.Call(func() error { return errBoom })
	*now = now.Add(2 * time.Minute)

	err := cb.Call(func() error {
		// A second caller arriving while the probe is in flight is rejected.
		assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrTooManyRequests)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(1)
	_ = cb.Call(func() error { return errBoom })
	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Call(func() error { return nil }))
}

func TestCircuitBreaker_CancellationIsNotAFailure(t *testing.T) {
	cb, _ := newTestBreaker(1)

	canceled := fmt.Errorf("chat completion failed: %w", context.Canceled)
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Call(func() error { return canceled }), context.Canceled)
	}
	assert.Equal(t, StateClosed, cb.State())

	called := false
	assert.NoError(t, cb.Call(func() error { called = true; return nil }))
	assert.True(t, called)
}

func TestCircuitBreaker_CancelledProbeFreesSlot(t *testing.T) {
	cb, now := newTestBreaker(1)

	_ = cb.Call(func() error { return errBoom })
	*now = now.Add(2 * time.Minute)

	assert.ErrorIs(t, cb.Call(func() error { return context.Canceled }), context.Canceled)
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}
