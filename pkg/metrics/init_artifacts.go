package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initArtifactMetrics() {
	r.ArtifactBytesWritten = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "depnet_artifact_bytes_written_total",
			Help: "Bytes written per output artifact",
		},
		[]string{"artifact"},
	)

	r.WarehouseRowsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "depnet_warehouse_rows_total",
			Help: "Rows inserted into the warehouse per table",
		},
		[]string{"table"},
	)
}
