// Package fetch decides, per request, whether to answer from the cache or to
// fetch upstream, and guarantees at most one outbound fetch per key at a time.
package fetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/poke-hub/poke-hub/internal/cache"
	"github.com/poke-hub/poke-hub/internal/upstream"
)

// Fetcher performs exactly one upstream request per call.
type Fetcher interface {
	Fetch(ctx context.Context, resource string) (*upstream.Result, error)
}

// Source reports where a Resolution came from.
type Source string

const (
	SourceCache     Source = "cache"
	SourceUpstream  Source = "upstream"
	SourceCoalesced Source = "coalesced"
)

// Resolution 是一次 Resolve 的结果；Body 在多个调用方之间共享，只读。
type Resolution struct {
	Key         cache.Key
	Body        []byte
	ContentType string
	Source      Source
}

// Options 控制写入缓存的 TTL 以及是否启用缓存。
type Options struct {
	TTL          time.Duration
	CacheEnabled bool
}

// Coordinator 组合缓存与上游请求，对同一个键的并发未命中只发起一次请求。
type Coordinator struct {
	group        singleflight.Group
	store        cache.Store
	fetcher      Fetcher
	normalizer   cache.Normalizer
	ttl          time.Duration
	cacheEnabled bool
}

// NewCoordinator 构造 Coordinator；store 为 nil 时等同于关闭缓存。
func NewCoordinator(store cache.Store, fetcher Fetcher, normalizer cache.Normalizer, opts Options) *Coordinator {
	return &Coordinator{
		store:        store,
		fetcher:      fetcher,
		normalizer:   normalizer,
		ttl:          opts.TTL,
		cacheEnabled: opts.CacheEnabled && store != nil,
	}
}

// CacheEnabled reports whether store reads and writes are active.
func (c *Coordinator) CacheEnabled() bool {
	return c.cacheEnabled
}

// Resolve 归一化 path 后依次尝试缓存与上游。失败结果不会写入缓存，
// 所有等待同一次请求的调用方得到相同的错误。ctx 结束只会让当前调用方停止等待，
// 不会取消共享的上游请求。
func (c *Coordinator) Resolve(ctx context.Context, path string) (Resolution, error) {
	key, err := c.normalizer.Normalize(path)
	if err != nil {
		return Resolution{}, err
	}

	if c.cacheEnabled {
		if entry, ok := c.store.Get(key); ok {
			Resolutions.WithLabelValues(string(SourceCache)).Inc()
			return fromEntry(key, entry), nil
		}
	}

	led := false
	ch := c.group.DoChan(string(key), func() (interface{}, error) {
		led = true
		return c.load(key)
	})

	select {
	case <-ctx.Done():
		return Resolution{Key: key}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Resolution{Key: key}, res.Err
		}
		resolution := res.Val.(Resolution)
		if !led {
			resolution.Source = SourceCoalesced
			Coalesced.Inc()
		}
		Resolutions.WithLabelValues(string(resolution.Source)).Inc()
		return resolution, nil
	}
}

// load runs once per in-flight key. It does not inherit anything from the
// request that started it; the fetcher's own timeout bounds it.
func (c *Coordinator) load(key cache.Key) (resolution Resolution, err error) {
	if c.cacheEnabled {
		if entry, ok := c.store.Peek(key); ok {
			return fromEntry(key, entry), nil
		}
	}

	InFlight.Inc()
	defer InFlight.Dec()
	defer func() {
		if r := recover(); r != nil {
			err = &upstream.Error{Kind: upstream.KindInternal, URL: string(key), Err: fmt.Errorf("fetch panic: %v", r)}
		}
	}()

	result, err := c.fetcher.Fetch(context.Background(), string(key))
	if err != nil {
		return Resolution{}, err
	}

	if c.cacheEnabled {
		// key is non-empty after Normalize, so Put cannot fail.
		_ = c.store.Put(key, result.Body, c.ttl, cache.PutOptions{ContentType: result.ContentType})
	}
	return Resolution{
		Key:         key,
		Body:        result.Body,
		ContentType: result.ContentType,
		Source:      SourceUpstream,
	}, nil
}

func fromEntry(key cache.Key, entry cache.Entry) Resolution {
	return Resolution{
		Key:         key,
		Body:        entry.Value,
		ContentType: entry.ContentType,
		Source:      SourceCache,
	}
}
