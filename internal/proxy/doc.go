// Package proxy turns routed HTTP requests into Engine.Resolve calls and
// writes the upstream bytes back unchanged. Errors carry a kind from the
// upstream package which is mapped onto a JSON error response here.
package proxy
