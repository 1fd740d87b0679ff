// Package upstream performs the single outbound GET the proxy issues per
// cache miss. Every failure is reported as *Error with a Kind so callers can
// map it to a response without inspecting transport details. The client never
// retries.
package upstream
