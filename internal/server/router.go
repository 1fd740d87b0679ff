package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProxyHandler describes the component responsible for answering a routed
// request. It allows injecting fake handlers during tests.
type ProxyHandler interface {
	Handle(fiber.Ctx, *Route) error
}

// ProxyHandlerFunc adapts a function to the ProxyHandler interface.
type ProxyHandlerFunc func(fiber.Ctx, *Route) error

// Handle makes ProxyHandlerFunc satisfy ProxyHandler.
func (f ProxyHandlerFunc) Handle(c fiber.Ctx, route *Route) error {
	return f(c, route)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger     *logrus.Logger
	Routes     *RouteTable
	Proxy      ProxyHandler
	ListenPort int
}

const (
	contextKeyRoute     = "_pokehub_route"
	contextKeyRequestID = "_pokehub_request_id"
)

// NewApp builds a Fiber application with request-id middleware, a catch-all
// proxy route and structured error handling.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Routes == nil {
		return nil, errors.New("route table is required")
	}
	if opts.Proxy == nil {
		return nil, errors.New("proxy handler is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts))

	app.All("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(string(c.Request().URI().Path())) {
			return c.Next()
		}
		route, ok := getRouteFromContext(c)
		if !ok {
			opts.Logger.WithFields(logrus.Fields{
				"action":     "route_lookup",
				"path":       string(c.Request().URI().Path()),
				"request_id": RequestID(c),
			}).Error("route missing from context")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "route_missing"})
		}
		return opts.Proxy.Handle(c, route)
	})

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID，并根据路径构造 Route。
func requestContextMiddleware(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		uri := c.Request().URI()
		path := string(uri.Path())
		if isDiagnosticsPath(path) {
			return c.Next()
		}

		// PathOriginal 保留客户端的转义形式，解码后的 Path 会把 %3F 变成查询分隔符。
		route := opts.Routes.Lookup(string(uri.PathOriginal()), string(uri.QueryString()))
		c.Locals(contextKeyRoute, route)
		return c.Next()
	}
}

func getRouteFromContext(c fiber.Ctx) (*Route, bool) {
	if value := c.Locals(contextKeyRoute); value != nil {
		if route, ok := value.(*Route); ok {
			return route, true
		}
	}
	return nil, false
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

// SetRequestID stores id the same way the middleware does; handlers invoked
// outside the middleware chain (tests, custom apps) use it.
func SetRequestID(c fiber.Ctx, id string) {
	c.Locals(contextKeyRequestID, id)
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
