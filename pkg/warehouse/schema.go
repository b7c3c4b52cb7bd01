package warehouse

import "context"

// migrate creates the necessary database tables
func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		models INTEGER NOT NULL,
		biomarkers INTEGER NOT NULL,
		dependencies INTEGER NOT NULL,
		edges INTEGER NOT NULL,
		communities INTEGER NOT NULL,
		modularity DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS edges (
		run_id TEXT NOT NULL REFERENCES runs(id),
		biomarker TEXT NOT NULL,
		dependency TEXT NOT NULL,
		correlation DOUBLE PRECISION NOT NULL,
		importance DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, biomarker, dependency)
	);

	CREATE TABLE IF NOT EXISTS communities (
		run_id TEXT NOT NULL REFERENCES runs(id),
		node TEXT NOT NULL,
		class TEXT NOT NULL,
		community INTEGER NOT NULL,
		PRIMARY KEY (run_id, node)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_run_id ON edges(run_id);
	CREATE INDEX IF NOT EXISTS idx_edges_dependency ON edges(dependency);
	CREATE INDEX IF NOT EXISTS idx_communities_run_id ON communities(run_id);
	CREATE INDEX IF NOT EXISTS idx_communities_community ON communities(run_id, community);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
