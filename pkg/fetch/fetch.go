// Package fetch retrieves listing pages over the network.
//
// This is the only component of the pipeline that performs I/O. Every fetch
// is bounded: a per-attempt timeout, an explicit retry budget, and a hard
// rule that a blocking origin is never hammered — a blocked response is
// retried once with a rotated request identity, then surfaced.
package fetch

import (
	"context"
	"fmt"
	"time"
)

// FailureKind classifies why a fetch ultimately failed.
type FailureKind string

const (
	// KindBlocked covers HTTP 403 and 429 from the origin.
	KindBlocked FailureKind = "blocked"
	// KindNotFound covers HTTP 404 and 410; never retried.
	KindNotFound FailureKind = "not_found"
	// KindNetworkError covers timeouts, DNS failures, connection resets,
	// and context cancellation.
	KindNetworkError FailureKind = "network_error"
	// KindServerError covers 5xx responses.
	KindServerError FailureKind = "server_error"
)

// Error is the typed failure returned by a Fetcher.
type Error struct {
	Kind     FailureKind
	Status   int
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch failed (%s, status %d, %d attempts): %v", e.Kind, e.Status, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch failed (%s, status %d, %d attempts)", e.Kind, e.Status, e.Attempts)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is a successful page retrieval.
type Result struct {
	HTML       string
	StatusCode int
	Attempts   int
	FetchedAt  time.Time
}

// Fetcher retrieves one page. Implementations must observe ctx cancellation
// and never block past their configured budget.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
	Close() error
}
