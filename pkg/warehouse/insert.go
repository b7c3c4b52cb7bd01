package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oncograph/depnet/pkg/bigraph"
	"github.com/oncograph/depnet/pkg/community"
	"github.com/oncograph/depnet/pkg/correlate"
)

// RunRecord summarizes one pipeline run for the runs table.
type RunRecord struct {
	ID           string
	CreatedAt    time.Time
	Models       int
	Biomarkers   int
	Dependencies int
	Edges        int
	Communities  int
	Modularity   float64
}

// InsertRun stores the run summary row.
func (s *Store) InsertRun(ctx context.Context, run RunRecord) error {
	query := `
		INSERT INTO runs (id, created_at, models, biomarkers, dependencies, edges, communities, modularity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, query,
		run.ID,
		run.CreatedAt,
		run.Models,
		run.Biomarkers,
		run.Dependencies,
		run.Edges,
		run.Communities,
		run.Modularity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// InsertEdges bulk-loads the sparsified edge list for a run.
func (s *Store) InsertEdges(ctx context.Context, runID string, edges []correlate.Edge) (int, error) {
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"edges"},
		[]string{"run_id", "biomarker", "dependency", "correlation", "importance"},
		pgx.CopyFromRows(edgeRows(runID, edges)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert edges: %w", err)
	}
	return int(n), nil
}

// InsertCommunities bulk-loads the node assignment for a run.
func (s *Store) InsertCommunities(ctx context.Context, runID string, res *community.Result, g *bigraph.Graph) (int, error) {
	rows, err := communityRows(runID, res, g)
	if err != nil {
		return 0, err
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"communities"},
		[]string{"run_id", "node", "class", "community"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert communities: %w", err)
	}
	return int(n), nil
}

func edgeRows(runID string, edges []correlate.Edge) [][]any {
	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{runID, e.Biomarker, e.Dependency, e.Corr, e.Importance})
	}
	return rows
}

func communityRows(runID string, res *community.Result, g *bigraph.Graph) ([][]any, error) {
	rows := make([][]any, 0, len(res.NodeCommunity))
	for _, c := range res.Communities {
		for _, node := range c.Nodes {
			class, ok := g.Class(node)
			if !ok {
				return nil, fmt.Errorf("community node %s not in graph", node)
			}
			rows = append(rows, []any{runID, node, class.String(), c.ID})
		}
	}
	return rows, nil
}
