package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies an upstream failure.
type Kind string

const (
	// KindTimeout means the request exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindTransport covers DNS, dial, TLS and connection errors.
	KindTransport Kind = "transport"
	// KindStatus means the upstream answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindInternal covers failures inside the proxy itself.
	KindInternal Kind = "internal"
)

// Error is returned by Client.Fetch for every failure.
type Error struct {
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("upstream %s: status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("upstream %s %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("upstream %s %s", e.URL, e.Kind)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var upstreamErr *Error
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Kind
	}
	return KindInternal
}

// StatusCodeOf returns the upstream status for KindStatus failures, otherwise 0.
func StatusCodeOf(err error) int {
	var upstreamErr *Error
	if errors.As(err, &upstreamErr) && upstreamErr.Kind == KindStatus {
		return upstreamErr.StatusCode
	}
	return 0
}

// classify maps a transport-level error onto a Kind.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
