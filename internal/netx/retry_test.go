package netx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Delay_WithinBounds(t *testing.T) {
	p := DefaultRetryPolicy()

	for n := 1; n <= p.MaxRetries; n++ {
		base := p.InitialDelay << (n - 1)
		lo := base - p.Jitter
		if lo < 0 {
			lo = 0
		}
		hi := base + p.Jitter

		for _, r := range []float64{0, 0.25, 0.5, 0.75, 0.999999} {
			d := p.Delay(n, r)
			assert.GreaterOrEqual(t, d, lo, "retry %d r=%v", n, r)
			assert.LessOrEqual(t, d, hi, "retry %d r=%v", n, r)
		}
	}
}

func TestRetryPolicy_Delay_ClampedAtZero(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, InitialDelay: 100 * time.Millisecond, Jitter: time.Second}
	assert.Equal(t, time.Duration(0), p.Delay(1, 0))
	assert.Equal(t, 100*time.Millisecond, p.Delay(1, 0.5))
}

func TestRetryPolicy_Delay_Doubles(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 500*time.Millisecond, p.Delay(1, 0.5))
	assert.Equal(t, time.Second, p.Delay(2, 0.5))
	assert.Equal(t, 2*time.Second, p.Delay(3, 0.5))
	assert.Equal(t, 500*time.Millisecond, p.Delay(0, 0.5))
}

func TestRetryPolicy_Delay_Saturates(t *testing.T) {
	p := DefaultRetryPolicy()
	for _, n := range []int{8, 30, 35, 36, 64, 1000} {
		assert.Equal(t, MaxDelay, p.Delay(n, 0.5), "retry %d", n)
		assert.LessOrEqual(t, p.Delay(n, 0.999999), MaxDelay+p.Jitter, "retry %d", n)
	}

	huge := RetryPolicy{InitialDelay: 2 * time.Hour}
	assert.Equal(t, MaxDelay, huge.Delay(1, 0.5))
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
	require.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
