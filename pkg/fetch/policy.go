package fetch

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy is an immutable retry budget passed into a fetch call.
// Concurrent fetches sharing a policy need no coordination: the policy
// carries no mutable state.
type RetryPolicy struct {
	// MaxAttempts bounds attempts for network and server errors.
	MaxAttempts int
	// BaseBackoff is the delay before the second attempt; it doubles per
	// attempt with up to 50% jitter on top.
	BaseBackoff time.Duration
	// MaxBackoff caps a single backoff delay. Zero means uncapped.
	MaxBackoff time.Duration
	// Timeout bounds one attempt's request.
	Timeout time.Duration
}

// DefaultRetryPolicy mirrors the budget used against LeBonCoin.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseBackoff: 2 * time.Second,
		MaxBackoff:  30 * time.Second,
		Timeout:     15 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = def.BaseBackoff
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	return p
}

// backoff returns the delay to sleep after the given 1-based attempt:
// exponential growth with jitter so concurrent callers do not sync up.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			d = p.MaxBackoff
			break
		}
	}
	return d + rand.N(d/2+1)
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
