package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", &Error{Kind: KindTimeout, URL: "http://x"})
	if KindOf(wrapped) != KindTimeout {
		t.Fatalf("KindOf should unwrap")
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("foreign errors should be internal")
	}
}

func TestStatusCodeOf(t *testing.T) {
	if StatusCodeOf(&Error{Kind: KindStatus, StatusCode: 503}) != 503 {
		t.Fatalf("expected 503")
	}
	if StatusCodeOf(&Error{Kind: KindTransport}) != 0 {
		t.Fatalf("non-status errors should report 0")
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := &Error{Kind: KindTimeout, URL: "http://x", Err: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("errors.Is should reach the cause")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("message should include kind: %s", err.Error())
	}
}

func TestClassify(t *testing.T) {
	if classify(fmt.Errorf("get: %w", context.DeadlineExceeded)) != KindTimeout {
		t.Fatalf("deadline should be timeout")
	}
	if classify(errors.New("connection refused")) != KindTransport {
		t.Fatalf("other errors should be transport")
	}
}
