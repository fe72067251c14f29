package collection

import "github.com/prometheus/client_golang/prometheus"

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colorcity",
			Subsystem: "collection",
			Name:      "resolutions_total",
			Help:      "Collection resolutions by result.",
		},
		[]string{"result"},
	)

	itemsResolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colorcity",
			Subsystem: "collection",
			Name:      "items_resolved_total",
			Help:      "Tokens decoded into collection items.",
		},
	)

	itemFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colorcity",
			Subsystem: "collection",
			Name:      "item_failures_total",
			Help:      "Owner indexes skipped during resolution, by cause.",
		},
		[]string{"kind"},
	)

	resolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "colorcity",
			Subsystem: "collection",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving one collection.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		resolutionsTotal,
		itemsResolvedTotal,
		itemFailuresTotal,
		resolveDuration,
	)
}
