package fetch

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/rendimo/rendimo/internal/logger"
)

// Static fetches pages over plain HTTP using Colly. It is the default
// transport; Dynamic exists for JS-only renderings.
type Static struct {
	policy     RetryPolicy
	identities []Identity
}

// StaticOption configures a Static fetcher.
type StaticOption func(*Static)

// WithIdentities replaces the rotating header pool.
func WithIdentities(ids []Identity) StaticOption {
	return func(f *Static) {
		if len(ids) > 0 {
			f.identities = ids
		}
	}
}

// NewStatic creates a Colly-backed fetcher with the given retry policy.
func NewStatic(policy RetryPolicy, opts ...StaticOption) *Static {
	f := &Static{
		policy:     policy.normalized(),
		identities: DefaultIdentities(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves url within the retry budget. Network and server errors
// are retried with exponential backoff and jitter; a blocked response is
// retried exactly once with a rotated identity; not-found is surfaced
// immediately.
func (f *Static) Fetch(ctx context.Context, url string) (*Result, error) {
	start := rand.IntN(len(f.identities))
	blockedRetried := false

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Kind: KindNetworkError, Attempts: attempt - 1, Err: err}
		}

		identity := f.identities[(start+attempt-1)%len(f.identities)]
		res, ferr := f.attempt(url, identity)
		if ferr == nil {
			res.Attempts = attempt
			logger.Debug("fetch succeeded", "url", url, "status", res.StatusCode, "attempts", attempt)
			return res, nil
		}
		ferr.Attempts = attempt
		logger.Debug("fetch attempt failed", "url", url, "attempt", attempt, "kind", ferr.Kind, "status", ferr.Status)

		switch ferr.Kind {
		case KindNotFound:
			return nil, ferr
		case KindBlocked:
			if blockedRetried {
				return nil, ferr
			}
			blockedRetried = true
		default:
			if attempt >= f.policy.MaxAttempts {
				return nil, ferr
			}
		}

		if err := sleep(ctx, f.policy.backoff(attempt)); err != nil {
			return nil, &Error{Kind: KindNetworkError, Attempts: attempt, Err: err}
		}
	}
}

// attempt performs a single request with one identity.
func (f *Static) attempt(url string, identity Identity) (*Result, *Error) {
	c := colly.NewCollector(
		colly.UserAgent(identity.UserAgent),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(f.policy.Timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range identity.Headers {
			r.Headers.Set(k, v)
		}
	})

	var (
		result   *Result
		fetchErr *Error
	)

	c.OnResponse(func(r *colly.Response) {
		result = &Result{
			HTML:       string(r.Body),
			StatusCode: r.StatusCode,
			FetchedAt:  time.Now(),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &Error{Kind: classifyStatus(status), Status: status, Err: err}
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = &Error{Kind: KindNetworkError, Err: err}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if result == nil {
		return nil, &Error{Kind: KindNetworkError}
	}
	return result, nil
}

// Close releases resources; the static fetcher holds none.
func (f *Static) Close() error { return nil }

func classifyStatus(status int) FailureKind {
	switch {
	case status == 403 || status == 429:
		return KindBlocked
	case status == 404 || status == 410:
		return KindNotFound
	case status >= 500:
		return KindServerError
	default:
		return KindNetworkError
	}
}
