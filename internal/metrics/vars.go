package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QuotePrice = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fx_quote_price",
		Help: "Last reference price per instrument pair",
	}, []string{"pair"})

	QuoteSpread = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fx_quote_spread",
		Help: "Last bid-ask spread per instrument pair",
	}, []string{"pair"})

	QuoteCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fx_quote_cache_hits_total",
		Help: "Quote requests served from the TTL cache",
	})

	UpstreamErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fx_upstream_errors_total",
		Help: "Failed upstream quote fetches",
	})

	FallbackServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fx_fallback_served_total",
		Help: "Quotes answered from the static fallback table",
	})

	FetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fx_fetch_latency_seconds",
		Help:    "Time to obtain a live quote from upstream",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		QuotePrice,
		QuoteSpread,
		QuoteCacheHits,
		UpstreamErrors,
		FallbackServed,
		FetchLatency,
	)
}
