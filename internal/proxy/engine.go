package proxy

import (
	"context"

	"github.com/poke-hub/poke-hub/internal/fetch"
)

// Resolver is the single operation the HTTP layer depends on.
type Resolver interface {
	Resolve(ctx context.Context, path string) (fetch.Resolution, error)
}

// Engine is the entry point of the caching core. It holds no caching logic;
// it keeps the transport layer decoupled from the coordinator.
type Engine struct {
	coordinator Resolver
}

// NewEngine wraps a coordinator.
func NewEngine(coordinator Resolver) *Engine {
	return &Engine{coordinator: coordinator}
}

// Resolve returns the bytes for path, from cache or upstream.
func (e *Engine) Resolve(ctx context.Context, path string) (fetch.Resolution, error) {
	return e.coordinator.Resolve(ctx, path)
}
