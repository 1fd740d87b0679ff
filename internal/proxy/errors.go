package proxy

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/poke-hub/poke-hub/internal/cache"
	"github.com/poke-hub/poke-hub/internal/upstream"
)

// failure describes how an error is rendered to the client.
type failure struct {
	status         int
	code           string
	kind           string
	upstreamStatus int
}

func classifyFailure(err error) failure {
	if errors.Is(err, cache.ErrInvalidKey) {
		return failure{status: fiber.StatusBadRequest, code: "invalid_path", kind: "invalid_key"}
	}

	var upstreamErr *upstream.Error
	if errors.As(err, &upstreamErr) {
		switch upstreamErr.Kind {
		case upstream.KindTimeout:
			return failure{status: fiber.StatusGatewayTimeout, code: "upstream_timeout", kind: string(upstreamErr.Kind)}
		case upstream.KindTransport:
			return failure{status: fiber.StatusBadGateway, code: "upstream_unreachable", kind: string(upstreamErr.Kind)}
		case upstream.KindStatus:
			return failure{
				status:         fiber.StatusBadGateway,
				code:           "upstream_status",
				kind:           string(upstreamErr.Kind),
				upstreamStatus: upstreamErr.StatusCode,
			}
		}
		return failure{status: fiber.StatusInternalServerError, code: "internal_error", kind: string(upstream.KindInternal)}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return failure{status: fiber.StatusServiceUnavailable, code: "request_cancelled", kind: "cancelled"}
	}
	return failure{status: fiber.StatusInternalServerError, code: "internal_error", kind: string(upstream.KindInternal)}
}
