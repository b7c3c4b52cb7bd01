package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphBiomarkersTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_graph_biomarkers_total",
			Help: "Number of biomarker nodes in the bipartite graph",
		},
	)

	r.GraphDependenciesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_graph_dependencies_total",
			Help: "Number of dependency nodes in the bipartite graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_graph_edges_total",
			Help: "Number of edges in the bipartite graph",
		},
	)

	r.CommunitiesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_communities_total",
			Help: "Number of communities in the last partition",
		},
	)

	r.Modularity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "depnet_modularity",
			Help: "Weighted modularity Q of the last partition",
		},
	)
}
