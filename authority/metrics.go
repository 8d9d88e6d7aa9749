package authority

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RecomputeTotal counts recomputes by outcome.
	RecomputeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkrank_recompute_total",
			Help: "Total number of site recomputes",
		},
		[]string{"outcome"},
	)

	// RecomputeDuration tracks how long a site recompute takes.
	RecomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkrank_recompute_duration_seconds",
			Help:    "Duration of site recomputes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SiteNodes tracks the node count of the last recompute of a site.
	SiteNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linkrank_site_nodes",
			Help: "Number of content nodes in the last computed graph of a site",
		},
		[]string{"site_id"},
	)

	// SiteEdges tracks the edge count of the last recompute of a site.
	SiteEdges = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linkrank_site_edges",
			Help: "Number of edges in the last computed graph of a site",
		},
		[]string{"site_id"},
	)

	// ResolvedEdgesTotal counts edges resolved by the pre-recompute pass.
	ResolvedEdgesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkrank_resolved_edges_total",
			Help: "Total number of internal edges resolved before recomputes",
		},
	)
)

func init() {
	prometheus.MustRegister(RecomputeTotal)
	prometheus.MustRegister(RecomputeDuration)
	prometheus.MustRegister(SiteNodes)
	prometheus.MustRegister(SiteEdges)
	prometheus.MustRegister(ResolvedEdgesTotal)
}
