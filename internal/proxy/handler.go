package proxy

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/poke-hub/poke-hub/internal/fetch"
	"github.com/poke-hub/poke-hub/internal/logging"
	"github.com/poke-hub/poke-hub/internal/server"
)

const defaultContentType = "application/json"

// Handler 将路由解析结果交给 Engine，并把上游正文原样写回客户端。
type Handler struct {
	engine Resolver
	random *RandomPicker
	logger *logrus.Logger
}

// NewHandler constructs a proxy handler with the shared engine and logger.
func NewHandler(engine Resolver, random *RandomPicker, logger *logrus.Logger) *Handler {
	return &Handler{
		engine: engine,
		random: random,
		logger: logger,
	}
}

// Handle 实现 server.ProxyHandler。
func (h *Handler) Handle(c fiber.Ctx, route *server.Route) error {
	started := time.Now()
	requestID := server.RequestID(c)

	resource := route.Resource
	if route.Kind == server.RouteRandom {
		if h.random == nil {
			return h.writeError(c, failure{status: fiber.StatusNotFound, code: "random_disabled"}, requestID)
		}
		resource = h.random.Path()
	}

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resolution, err := h.engine.Resolve(ctx, resource)
	if err != nil {
		fail := classifyFailure(err)
		h.logResult(route, resource, resolution, requestID, fail, started, err)
		return h.writeError(c, fail, requestID)
	}

	contentType := resolution.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set("X-Poke-Hub-Cache", cacheHeader(resolution.Source))
	c.Set("X-Poke-Hub-Key", resolution.Key.String())
	if route.UpstreamURL != nil {
		c.Set("X-Poke-Hub-Upstream", route.UpstreamURL.String())
	}
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}

	h.logResult(route, resource, resolution, requestID, failure{status: fiber.StatusOK}, started, nil)
	return c.Status(fiber.StatusOK).Send(resolution.Body)
}

func (h *Handler) writeError(c fiber.Ctx, fail failure, requestID string) error {
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
	payload := fiber.Map{"error": fail.code}
	if fail.upstreamStatus != 0 {
		payload["upstream_status"] = fail.upstreamStatus
	}
	return c.Status(fail.status).JSON(payload)
}

func (h *Handler) logResult(
	route *server.Route,
	resource string,
	resolution fetch.Resolution,
	requestID string,
	fail failure,
	started time.Time,
	err error,
) {
	if h.logger == nil {
		return
	}
	fields := logging.RequestFields(requestID, resolution.Key.String(), string(resolution.Source))
	fields["action"] = "proxy"
	fields["route"] = string(route.Kind)
	fields["resource"] = resource
	fields["status"] = fail.status
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if route.UpstreamURL != nil {
		fields["upstream"] = route.UpstreamURL.String()
	}
	if err != nil {
		fields["error"] = err.Error()
		fields["error_kind"] = fail.kind
		if fail.upstreamStatus != 0 {
			fields["upstream_status"] = fail.upstreamStatus
		}
		h.logger.WithFields(fields).Error("proxy_failed")
		return
	}
	h.logger.WithFields(fields).Info("proxy_complete")
}

func cacheHeader(source fetch.Source) string {
	switch source {
	case fetch.SourceCache:
		return "hit"
	case fetch.SourceCoalesced:
		return "coalesced"
	default:
		return "miss"
	}
}
