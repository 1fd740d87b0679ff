package proxy

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/poke-hub/poke-hub/internal/fetch"
	"github.com/poke-hub/poke-hub/internal/server"
	"github.com/poke-hub/poke-hub/internal/upstream"
)

type stubResolver struct {
	lastPath   string
	resolution fetch.Resolution
	err        error
}

func (s *stubResolver) Resolve(ctx context.Context, path string) (fetch.Resolution, error) {
	s.lastPath = path
	return s.resolution, s.err
}

func newTestCtx(t *testing.T, method string) (fiber.Ctx, func()) {
	t.Helper()
	app := fiber.New()
	fctx := new(fasthttp.RequestCtx)
	fctx.Request.Header.SetMethod(method)
	ctx := app.AcquireCtx(fctx)
	if ctx.Method() != method {
		t.Fatalf("test ctx method = %s, want %s", ctx.Method(), method)
	}
	server.SetRequestID(ctx, "req-1")
	return ctx, func() {
		app.ReleaseCtx(ctx)
		_ = app.Shutdown()
	}
}

func testRoute(resource string) *server.Route {
	base, _ := url.Parse("https://pokeapi.co/api/v2")
	return &server.Route{Kind: server.RouteProxy, Resource: resource, UpstreamURL: base}
}

func TestHandlerWritesBodyVerbatim(t *testing.T) {
	ctx, release := newTestCtx(t, fiber.MethodGet)
	defer release()

	resolver := &stubResolver{resolution: fetch.Resolution{
		Key:         "pokemon/25",
		Body:        []byte(`{"name": "pikachu"}`),
		ContentType: "application/json; charset=utf-8",
		Source:      fetch.SourceCache,
	}}
	logBuf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(logBuf)

	handler := NewHandler(resolver, nil, logger)
	if err := handler.Handle(ctx, testRoute("/pokemon/25")); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	if resolver.lastPath != "/pokemon/25" {
		t.Fatalf("unexpected resolved path %s", resolver.lastPath)
	}
	if status := ctx.Response().StatusCode(); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body := string(ctx.Response().Body()); body != `{"name": "pikachu"}` {
		t.Fatalf("body should be passed through, got %s", body)
	}
	if got := string(ctx.Response().Header.ContentType()); got != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %s", got)
	}
	if got := string(ctx.Response().Header.Peek("X-Poke-Hub-Cache")); got != "hit" {
		t.Fatalf("expected cache hit header, got %s", got)
	}
	if got := string(ctx.Response().Header.Peek("X-Request-ID")); got != "req-1" {
		t.Fatalf("expected request id header, got %s", got)
	}
	if !strings.Contains(logBuf.String(), "proxy_complete") || !strings.Contains(logBuf.String(), "req-1") {
		t.Fatalf("expected proxy_complete log with request id, got %s", logBuf.String())
	}
}

func TestHandlerDefaultsContentType(t *testing.T) {
	ctx, release := newTestCtx(t, fiber.MethodGet)
	defer release()

	resolver := &stubResolver{resolution: fetch.Resolution{Key: "berry/1", Body: []byte(`{}`), Source: fetch.SourceUpstream}}
	if err := NewHandler(resolver, nil, nil).Handle(ctx, testRoute("/berry/1")); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if got := string(ctx.Response().Header.ContentType()); got != "application/json" {
		t.Fatalf("expected default content type, got %s", got)
	}
	if got := string(ctx.Response().Header.Peek("X-Poke-Hub-Cache")); got != "miss" {
		t.Fatalf("expected miss header, got %s", got)
	}
}

func TestHandlerMapsUpstreamStatus(t *testing.T) {
	ctx, release := newTestCtx(t, fiber.MethodGet)
	defer release()

	logBuf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(logBuf)

	resolver := &stubResolver{err: &upstream.Error{Kind: upstream.KindStatus, StatusCode: 404, URL: "https://pokeapi.co/api/v2/pokemon/0"}}
	if err := NewHandler(resolver, nil, logger).Handle(ctx, testRoute("/pokemon/0")); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if status := ctx.Response().StatusCode(); status != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
	body := string(ctx.Response().Body())
	if !strings.Contains(body, `"upstream_status"`) || !strings.Contains(body, "404") {
		t.Fatalf("unexpected error body %s", body)
	}
	if !strings.Contains(logBuf.String(), "proxy_failed") || !strings.Contains(logBuf.String(), "error_kind=status") {
		t.Fatalf("expected proxy_failed log, got %s", logBuf.String())
	}
}

func TestHandlerRandomRoute(t *testing.T) {
	ctx, release := newTestCtx(t, fiber.MethodGet)
	defer release()

	picker := NewRandomPicker("pokemon", 1, 1025)
	picker.intN = func(n int) int { return 24 }
	resolver := &stubResolver{resolution: fetch.Resolution{Key: "pokemon/25", Body: []byte(`{}`)}}

	route := testRoute("")
	route.Kind = server.RouteRandom
	if err := NewHandler(resolver, picker, nil).Handle(ctx, route); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if resolver.lastPath != "/pokemon/25" {
		t.Fatalf("random route should resolve picked id, got %s", resolver.lastPath)
	}
}

func TestHandlerRandomWithoutPicker(t *testing.T) {
	ctx, release := newTestCtx(t, fiber.MethodGet)
	defer release()

	route := testRoute("")
	route.Kind = server.RouteRandom
	if err := NewHandler(&stubResolver{}, nil, nil).Handle(ctx, route); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if status := ctx.Response().StatusCode(); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 without picker, got %d", status)
	}
}
