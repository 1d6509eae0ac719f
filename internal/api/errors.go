package api

import (
	"context"
	"errors"
	"fmt"
)

type Kind int

const (
	// KindTransport means no response arrived.
	KindTransport Kind = iota + 1
	// KindUpstream means the upstream answered with a non-2xx status.
	KindUpstream
	// KindDecode means the body could not be parsed into the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUpstream:
		return "upstream"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the typed failure every upstream client returns.
type Error struct {
	Kind       Kind
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUpstream:
		return fmt.Sprintf("%s: %s failure %d (%s)", e.Source, e.Kind, e.StatusCode, e.URL)
	default:
		return fmt.Sprintf("%s: %s failure (%s): %v", e.Source, e.Kind, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsNotFound reports an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUpstream && apiErr.StatusCode == 404
}

// IsRetryable reports whether a failure may succeed on another attempt.
// Decode failures, 404s and cancellations are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch KindOf(err) {
	case KindDecode:
		return false
	case KindUpstream:
		return !IsNotFound(err)
	default:
		return true
	}
}
