package pipeline

import (
	"context"
	"time"

	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/warehouse"
)

// finalize writes the manifest, exports metrics, and flushes results to the
// warehouse when one is configured.
func (p *Pipeline) finalize(ctx context.Context) error {
	manifest, err := p.layout.WriteManifest(p.runID, p.artifactPaths())
	if err != nil {
		return err
	}
	p.log.Info("manifest written",
		logging.Int("artifacts", len(manifest.Artifacts)),
	)

	if p.cfg.Warehouse.DatabaseURL != "" {
		if err := p.flushWarehouse(ctx); err != nil {
			return err
		}
	}

	if p.cfg.Metrics.TextfilePath != "" {
		if err := p.metrics.WriteTextfile(p.cfg.Metrics.TextfilePath); err != nil {
			return err
		}
		p.log.Info("metrics textfile written",
			logging.String("path", p.cfg.Metrics.TextfilePath),
		)
	}
	return nil
}

func (p *Pipeline) flushWarehouse(ctx context.Context) error {
	store, err := warehouse.NewStore(ctx, p.cfg.Warehouse.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	run := warehouse.RunRecord{
		ID:        p.runID,
		CreatedAt: time.Now().UTC(),
		Models:    p.mergedModels,
		Edges:     len(p.edges),
	}
	if p.graph != nil {
		run.Biomarkers = p.graph.NumBiomarkers()
		run.Dependencies = p.graph.NumDependencies()
	}
	if p.partition != nil {
		run.Communities = len(p.partition.Communities)
		run.Modularity = p.partition.Modularity
	}
	if err := store.InsertRun(ctx, run); err != nil {
		return err
	}

	edgeCount, err := store.InsertEdges(ctx, p.runID, p.edges)
	if err != nil {
		return err
	}
	p.metrics.RecordWarehouseRows("edges", edgeCount)

	if p.partition != nil && p.graph != nil {
		commCount, err := store.InsertCommunities(ctx, p.runID, p.partition, p.graph)
		if err != nil {
			return err
		}
		p.metrics.RecordWarehouseRows("communities", commCount)
	}

	p.log.Info("warehouse flush complete",
		logging.Int("edges", edgeCount),
	)
	return nil
}
