package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts Get calls served from a live entry.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poke_hub_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// CacheMisses counts Get calls that found no live entry.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poke_hub_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheEvictions counts entries dropped to make room for a new key.
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poke_hub_cache_evictions_total",
			Help: "Total number of LRU evictions",
		},
	)

	// CacheExpirations counts expired entries removed lazily or by a sweep.
	CacheExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poke_hub_cache_expirations_total",
			Help: "Total number of expired entries removed",
		},
	)

	// CacheEntries tracks the current number of stored entries.
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poke_hub_cache_entries",
			Help: "Current number of entries held in the cache",
		},
	)
)
