package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts outbound requests by outcome ("ok" or a Kind).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poke_hub_upstream_requests_total",
			Help: "Total number of upstream requests by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamDuration observes the wall time of each outbound request.
	UpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poke_hub_upstream_request_duration_seconds",
			Help:    "Upstream request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
