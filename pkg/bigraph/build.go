package bigraph

import (
	"fmt"

	"github.com/oncograph/depnet/pkg/correlate"
	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/validation"
)

// Build constructs the bipartite graph from a sparsified edge list. The
// dependency node set is the externally provided list of scored genes; edges
// pointing at a dependency outside it are dropped with a count, matching the
// membership guard the network build has always applied. Biomarker nodes are
// declared from the edge list itself.
func Build(edges []correlate.Edge, dependencies []string, log logging.Logger) (*Graph, error) {
	depSet := make(map[string]struct{}, len(dependencies))
	for _, d := range dependencies {
		depSet[d] = struct{}{}
	}

	seen := make(map[string]struct{})
	biomarkers := make([]string, 0)
	usable := make([]correlate.Edge, 0, len(edges))
	// Renaming dependencies upstream can fold several ids into one gene,
	// leaving repeated (biomarker, dependency) pairs; keep the strongest
	pairIdx := make(map[string]int)
	skipped, collapsed := 0, 0
	for _, e := range edges {
		if _, ok := depSet[e.Dependency]; !ok {
			skipped++
			continue
		}
		key := e.Biomarker + "\x00" + e.Dependency
		if i, dup := pairIdx[key]; dup {
			collapsed++
			if e.Importance > usable[i].Importance {
				usable[i] = e
			}
			continue
		}
		pairIdx[key] = len(usable)
		usable = append(usable, e)
		if _, dup := seen[e.Biomarker]; !dup {
			seen[e.Biomarker] = struct{}{}
			biomarkers = append(biomarkers, e.Biomarker)
		}
	}
	if skipped > 0 {
		log.Warn("edges referencing unlisted dependencies dropped",
			logging.Stage("graph"),
			logging.Int("dropped", skipped),
		)
	}
	if collapsed > 0 {
		log.Warn("duplicate biomarker-dependency pairs collapsed",
			logging.Stage("graph"),
			logging.Int("collapsed", collapsed),
		)
	}
	if len(usable) == 0 {
		return nil, ErrEmptyGraph
	}

	g, err := New(biomarkers, dependencies)
	if err != nil {
		return nil, err
	}

	for _, e := range usable {
		rec := validation.EdgeRecord{
			Biomarker:  e.Biomarker,
			Dependency: e.Dependency,
			Importance: e.Importance,
		}
		if err := validation.ValidateEdgeRecord(&rec); err != nil {
			return nil, fmt.Errorf("invalid edge %s-%s: %w", e.Biomarker, e.Dependency, err)
		}
		if err := g.AddEdge(e.Biomarker, e.Dependency, e.Importance); err != nil {
			return nil, err
		}
	}

	log.Info("bipartite graph built",
		logging.Stage("graph"),
		logging.Int("biomarker_nodes", g.NumBiomarkers()),
		logging.Int("dependency_nodes", g.NumDependencies()),
		logging.Int("edges", g.NumEdges()),
	)
	return g, nil
}
