package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/oncograph/depnet/pkg/artifacts"
	"github.com/oncograph/depnet/pkg/bigraph"
	"github.com/oncograph/depnet/pkg/community"
	"github.com/oncograph/depnet/pkg/correlate"
	"github.com/oncograph/depnet/pkg/depmap"
	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/merge"
	"github.com/oncograph/depnet/pkg/sparsify"
	"github.com/oncograph/depnet/pkg/table"
	"github.com/oncograph/depnet/pkg/target"
)

// dataPath resolves a configured file name against the data directory.
func (p *Pipeline) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.cfg.DataDir, name)
}

func (p *Pipeline) runMerge(ctx context.Context) error {
	loaded, skipped := 0, 0
	for _, src := range p.cfg.Sources {
		if _, err := os.Stat(p.dataPath(src.Path)); err != nil {
			skipped++
		} else {
			loaded++
		}
	}

	merged, err := merge.Run(merge.Options{
		DataDir:          p.cfg.DataDir,
		Sources:          p.cfg.Sources,
		CNVLossThreshold: p.cfg.Merge.CNVLossThreshold,
	}, p.log)
	if err != nil {
		return err
	}

	deps, err := table.ReadCSV(p.dataPath(p.cfg.DependencyFile))
	if err != nil {
		return err
	}

	if err := merged.WriteCSV(p.layout.MergedBiomarkers()); err != nil {
		return err
	}
	if err := deps.WriteCSV(p.layout.Dependencies()); err != nil {
		return err
	}

	p.metrics.UpdateMergeMetrics(merged.NumRows(), merged.NumCols(), loaded, skipped)
	p.mergedModels = merged.NumRows()
	p.log.Info("merge artifacts written",
		logging.Stage(StageMerge),
		logging.Int("models", merged.NumRows()),
		logging.Int("biomarkers", merged.NumCols()),
		logging.Int("dependencies", deps.NumCols()),
	)
	return nil
}

func (p *Pipeline) runScore(ctx context.Context) error {
	if err := p.layout.Require(p.layout.MergedBiomarkers(), p.layout.Dependencies()); err != nil {
		return err
	}

	bio, err := table.ReadCSV(p.layout.MergedBiomarkers())
	if err != nil {
		return err
	}
	deps, err := table.ReadCSV(p.layout.Dependencies())
	if err != nil {
		return err
	}

	edges, err := correlate.Score(bio, deps, correlate.Options{
		TopKPerBiomarker: p.cfg.Score.TopKPerBiomarker,
		MinAbsCorr:       p.cfg.Score.MinAbsCorr,
		BatchSize:        p.cfg.Score.BatchSize,
		Workers:          p.cfg.Score.Workers,
	}, p.log)
	if err != nil {
		return err
	}

	n, err := artifacts.WriteEdges(p.layout.ProcessedFeatures(), edges)
	if err != nil {
		return err
	}
	p.metrics.RecordArtifact(artifacts.FileProcessedFeatures, n)
	p.metrics.EdgesScoredTotal.Set(float64(len(edges)))
	return nil
}

func (p *Pipeline) runSparsify(ctx context.Context) error {
	if err := p.layout.Require(p.layout.ProcessedFeatures()); err != nil {
		return err
	}

	scored, err := artifacts.ReadEdges(p.layout.ProcessedFeatures())
	if err != nil {
		return err
	}

	kept, err := sparsify.Sparsify(scored, sparsify.Options{
		EdgeMin:           p.cfg.Sparsify.EdgeMin,
		TopKPerDependency: p.cfg.Sparsify.TopKPerDependency,
		TopKPerBiomarker:  p.cfg.Sparsify.TopKPerBiomarker,
	}, p.log)
	if err != nil {
		return err
	}

	n, err := artifacts.WriteEdges(p.layout.NetworkEdges(), kept)
	if err != nil {
		return err
	}
	p.metrics.RecordArtifact(artifacts.FileNetworkEdges, n)
	p.metrics.UpdateEdgeMetrics(len(scored), len(kept))
	p.edges = kept
	return nil
}

func (p *Pipeline) runGraph(ctx context.Context) error {
	if err := p.layout.Require(p.layout.NetworkEdges(), p.layout.Dependencies()); err != nil {
		return err
	}
	start := time.Now()

	edges, err := artifacts.ReadEdges(p.layout.NetworkEdges())
	if err != nil {
		return err
	}
	deps, err := table.ReadCSV(p.layout.Dependencies())
	if err != nil {
		return err
	}

	dependencies := deps.Columns
	if m := p.loadMapping(); m != nil {
		edges = m.Apply(edges)
		dependencies = m.ApplyNames(dependencies)
	}

	g, err := bigraph.Build(edges, dependencies, p.log)
	if err != nil {
		return err
	}

	if err := g.WriteFile(p.layout.Network()); err != nil {
		return err
	}
	if info, err := os.Stat(p.layout.Network()); err == nil {
		p.metrics.RecordArtifact(artifacts.FileNetwork, info.Size())
	}
	if _, err := artifacts.WriteNetworkSummary(p.layout.NetworkSummary(), g, time.Since(start)); err != nil {
		return err
	}

	p.metrics.UpdateGraphMetrics(g.NumBiomarkers(), g.NumDependencies(), g.NumEdges())
	p.graph = g
	return nil
}

func (p *Pipeline) runCommunities(ctx context.Context) error {
	if err := p.layout.Require(p.layout.Network()); err != nil {
		return err
	}
	start := time.Now()

	g, err := bigraph.ReadFile(p.layout.Network())
	if err != nil {
		return err
	}

	res, err := community.Detect(g, community.Options{
		Algorithm:     p.cfg.Community.Algorithm,
		Resolution:    p.cfg.Community.Resolution,
		Seed:          p.cfg.Community.Seed,
		MaxIterations: p.cfg.Community.MaxIterations,
	}, p.log)
	if err != nil {
		return err
	}

	n, err := artifacts.WriteCommunities(p.layout.Communities(), res, g)
	if err != nil {
		return err
	}
	p.metrics.RecordArtifact(artifacts.FileCommunities, n)
	if _, err := artifacts.WriteCommunitySummary(p.layout.CommunitySummary(), g, res, time.Since(start)); err != nil {
		return err
	}

	p.metrics.UpdateCommunityMetrics(len(res.Communities), res.Modularity)
	p.graph = g
	p.partition = res
	return nil
}

// runDepMap is best-effort: a missing or malformed mapping file downgrades
// to a warning so the network still builds with raw identifiers.
func (p *Pipeline) runDepMap(ctx context.Context) error {
	m, err := depmap.Load(p.dataPath(p.cfg.DependencyMapFile), p.log)
	if err != nil {
		p.log.Warn("dependency map unusable, identifiers pass through",
			logging.Stage(StageDepMap),
			logging.Error(err),
		)
		return nil
	}
	return m.WriteCSV(p.layout.DependencyMap())
}

// loadMapping returns the mapping artifact when a usable one was produced.
func (p *Pipeline) loadMapping() *depmap.Mapping {
	path := p.layout.DependencyMap()
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	m, err := depmap.Load(path, p.log)
	if err != nil {
		p.log.Warn("dependency map artifact unreadable, identifiers pass through",
			logging.Error(err),
		)
		return nil
	}
	return m
}

func (p *Pipeline) runTarget(ctx context.Context) error {
	if err := p.layout.Require(p.layout.Dependencies()); err != nil {
		return err
	}

	deps, err := table.ReadCSV(p.layout.Dependencies())
	if err != nil {
		return err
	}

	res, err := target.Prepare(deps, p.cfg.Target.DependencyColumn, p.cfg.Target.Quantile, p.log)
	if err != nil {
		return err
	}
	return res.WriteCSV(p.layout.Target())
}

// artifactPaths lists everything a full run can produce, for the manifest.
func (p *Pipeline) artifactPaths() []string {
	return []string{
		p.layout.MergedBiomarkers(),
		p.layout.Dependencies(),
		p.layout.ProcessedFeatures(),
		p.layout.NetworkEdges(),
		p.layout.Network(),
		p.layout.Communities(),
		p.layout.NetworkSummary(),
		p.layout.CommunitySummary(),
		p.layout.DependencyMap(),
		p.layout.Target(),
	}
}
