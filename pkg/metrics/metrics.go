package metrics

import (
	"time"
)

// RecordStage records one stage execution with its duration
func (r *Registry) RecordStage(stage, status string, duration time.Duration) {
	r.StageRunsTotal.WithLabelValues(stage, status).Inc()
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRun records a completed pipeline run
func (r *Registry) RecordRun(status string) {
	r.RunsTotal.WithLabelValues(status).Inc()
}

// UpdateMergeMetrics updates gauges after the merge stage
func (r *Registry) UpdateMergeMetrics(models, biomarkers, sourcesLoaded, sourcesSkipped int) {
	r.MergeModelsTotal.Set(float64(models))
	r.MergeBiomarkersTotal.Set(float64(biomarkers))
	r.MergeSourcesLoaded.Set(float64(sourcesLoaded))
	r.MergeSourcesSkipped.Add(float64(sourcesSkipped))
}

// UpdateEdgeMetrics updates gauges after scoring and sparsification
func (r *Registry) UpdateEdgeMetrics(scored, kept int) {
	r.EdgesScoredTotal.Set(float64(scored))
	r.EdgesKeptTotal.Set(float64(kept))
}

// UpdateGraphMetrics updates gauges after graph construction
func (r *Registry) UpdateGraphMetrics(biomarkers, dependencies, edges int) {
	r.GraphBiomarkersTotal.Set(float64(biomarkers))
	r.GraphDependenciesTotal.Set(float64(dependencies))
	r.GraphEdgesTotal.Set(float64(edges))
}

// UpdateCommunityMetrics updates gauges after partitioning
func (r *Registry) UpdateCommunityMetrics(communities int, modularity float64) {
	r.CommunitiesTotal.Set(float64(communities))
	r.Modularity.Set(modularity)
}

// RecordArtifact records bytes written for one output artifact
func (r *Registry) RecordArtifact(artifact string, bytes int64) {
	r.ArtifactBytesWritten.WithLabelValues(artifact).Add(float64(bytes))
}

// RecordWarehouseRows records rows inserted into a warehouse table
func (r *Registry) RecordWarehouseRows(table string, rows int) {
	r.WarehouseRowsTotal.WithLabelValues(table).Add(float64(rows))
}
