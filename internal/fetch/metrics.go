package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions counts successful resolves by source.
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poke_hub_fetch_resolutions_total",
			Help: "Total number of resolved requests by source (cache, upstream, coalesced)",
		},
		[]string{"source"},
	)

	// Coalesced counts callers that joined an in-flight fetch instead of starting one.
	Coalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poke_hub_fetch_coalesced_total",
			Help: "Total number of requests served by joining an in-flight fetch",
		},
	)

	// InFlight tracks fetches currently waiting on the upstream.
	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poke_hub_fetch_inflight",
			Help: "Number of upstream fetches currently in flight",
		},
	)
)
