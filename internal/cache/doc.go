// Package cache holds the bounded in-memory store that backs the proxy. Keys
// are normalized request paths (see Normalizer); values are the raw upstream
// bodies together with their content type and expiry. The store evicts the
// least recently used entry once MaxSize is reached and never reports an
// entry whose ExpiresAt has passed. Expired entries are dropped lazily on
// access and periodically by the Janitor.
package cache
