package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Pipeline Metrics
	StageDuration  *prometheus.HistogramVec
	StageRunsTotal *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec

	// Merge Metrics
	MergeModelsTotal     prometheus.Gauge
	MergeBiomarkersTotal prometheus.Gauge
	MergeSourcesLoaded   prometheus.Gauge
	MergeSourcesSkipped  prometheus.Counter

	// Scoring Metrics
	EdgesScoredTotal prometheus.Gauge
	EdgesKeptTotal   prometheus.Gauge

	// Graph Metrics
	GraphBiomarkersTotal   prometheus.Gauge
	GraphDependenciesTotal prometheus.Gauge
	GraphEdgesTotal        prometheus.Gauge
	CommunitiesTotal       prometheus.Gauge
	Modularity             prometheus.Gauge

	// Artifact Metrics
	ArtifactBytesWritten *prometheus.CounterVec
	WarehouseRowsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initPipelineMetrics()
	r.initMergeMetrics()
	r.initGraphMetrics()
	r.initArtifactMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
