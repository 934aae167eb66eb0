package netx

import (
	"context"
	"time"
)

// RetryPolicy bounds retries of transport failures.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Jitter       time.Duration
}

// DefaultRetryPolicy: 3 retries, 500ms doubling, ±250ms jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		Jitter:       250 * time.Millisecond,
	}
}

// MaxDelay caps the exponential part of a retry delay.
const MaxDelay = time.Minute

// Delay returns the wait before retry n (1-based). r must be uniform in
// [0, 1); it is mapped onto [-Jitter, +Jitter]. The doubling saturates at
// MaxDelay and the result is never negative.
func (p RetryPolicy) Delay(n int, r float64) time.Duration {
	base := p.InitialDelay
	for i := 1; i < n && base < MaxDelay; i++ {
		base *= 2
	}
	if base > MaxDelay {
		base = MaxDelay
	}
	offset := time.Duration((2*r - 1) * float64(p.Jitter))

	d := base + offset
	if d < 0 {
		return 0
	}
	return d
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
