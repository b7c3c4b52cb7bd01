package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initMergeMetrics() {
	r.MergeModelsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_merge_models_total",
			Help: "Number of cell-line models surviving the inner join",
		},
	)

	r.MergeBiomarkersTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_merge_biomarkers_total",
			Help: "Number of biomarker feature columns after merging",
		},
	)

	r.MergeSourcesLoaded = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_merge_sources_loaded",
			Help: "Number of omics source tables loaded in the last merge",
		},
	)

	r.MergeSourcesSkipped = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "depnet_merge_sources_skipped_total",
			Help: "Total number of configured source tables skipped as missing",
		},
	)

	r.EdgesScoredTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_edges_scored_total",
			Help: "Number of biomarker-dependency edges produced by scoring",
		},
	)

	r.EdgesKeptTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_edges_kept_total",
			Help: "Number of edges surviving sparsification",
		},
	)
}
