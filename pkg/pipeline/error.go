package pipeline

import (
	"errors"
	"fmt"

	"github.com/rendimo/rendimo/pkg/fetch"
)

// Kind is the failure taxonomy exposed to callers. Every failure carries
// exactly one Kind, so a caller can always offer its manual-entry fallback
// without inspecting error text.
type Kind string

const (
	KindInvalidURL        Kind = "invalid_url"
	KindFetchBlocked      Kind = "fetch_blocked"
	KindFetchNotFound     Kind = "fetch_not_found"
	KindFetchNetworkError Kind = "fetch_network_error"
	KindFetchServerError  Kind = "fetch_server_error"
	KindInsufficientData  Kind = "insufficient_data"
)

// Error is the typed failure returned by Extract. It wraps the underlying
// cause for errors.Is/As inspection.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or "" when err is not a pipeline
// failure.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}

// fetchKind maps the fetcher's failure taxonomy onto the pipeline's.
func fetchKind(kind fetch.FailureKind) Kind {
	switch kind {
	case fetch.KindBlocked:
		return KindFetchBlocked
	case fetch.KindNotFound:
		return KindFetchNotFound
	case fetch.KindServerError:
		return KindFetchServerError
	default:
		return KindFetchNetworkError
	}
}
