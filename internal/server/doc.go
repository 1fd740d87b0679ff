// Package server hosts the Fiber HTTP service, the request middleware chain
// and the route table that maps inbound paths onto upstream resources. Proxy
// handlers are injected through ProxyHandler so tests can swap in fakes.
// Diagnostics live under the reserved /-/ prefix and are registered by the
// routes subpackage after NewApp returns.
package server
