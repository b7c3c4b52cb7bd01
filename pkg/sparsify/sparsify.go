// Package sparsify bounds the edge list before graph construction: a minimum
// weight cut, then a per-dependency top-K, then a per-biomarker top-K.
//
// The order is load-bearing. Dependency-side truncation runs first, so a
// biomarker can end below its own cap when its strongest links were already
// dependency-capped away. Downstream analysis was calibrated against this
// ordering; do not swap the passes.
package sparsify

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/oncograph/depnet/pkg/correlate"
	"github.com/oncograph/depnet/pkg/logging"
)

// ErrAllEdgesFiltered is returned when sparsification leaves nothing.
var ErrAllEdgesFiltered = errors.New("sparsification removed every edge")

// ErrInvalidTopK is returned for a non-positive per-node cap, which would
// otherwise keep nothing at best and panic at worst.
var ErrInvalidTopK = errors.New("per-node top-k cap must be positive")

// Options configures the sparsifier.
type Options struct {
	// EdgeMin discards edges with importance below this value
	EdgeMin float64
	// TopKPerDependency caps edges per dependency node (first pass)
	TopKPerDependency int
	// TopKPerBiomarker caps edges per biomarker node (second pass)
	TopKPerBiomarker int
}

// Sparsify prunes the edge list. Within each node's group, edges rank by
// importance descending with ties keeping their input order; kept edges
// retain their original relative order in the result.
func Sparsify(edges []correlate.Edge, opts Options, log logging.Logger) ([]correlate.Edge, error) {
	if opts.TopKPerDependency <= 0 {
		return nil, fmt.Errorf("%w: per-dependency cap %d", ErrInvalidTopK, opts.TopKPerDependency)
	}
	if opts.TopKPerBiomarker <= 0 {
		return nil, fmt.Errorf("%w: per-biomarker cap %d", ErrInvalidTopK, opts.TopKPerBiomarker)
	}

	kept := make([]correlate.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Importance >= opts.EdgeMin && !math.IsNaN(e.Importance) {
			kept = append(kept, e)
		}
	}

	kept = truncatePerNode(kept, opts.TopKPerDependency, func(e correlate.Edge) string { return e.Dependency })
	kept = truncatePerNode(kept, opts.TopKPerBiomarker, func(e correlate.Edge) string { return e.Biomarker })

	if len(kept) == 0 {
		return nil, ErrAllEdgesFiltered
	}

	log.Info("edge list sparsified",
		logging.Stage("sparsify"),
		logging.Int("edges_in", len(edges)),
		logging.Int("edges_out", len(kept)),
	)
	return kept, nil
}

// truncatePerNode keeps each node's top-k edges by importance and returns the
// survivors in their original relative order.
func truncatePerNode(edges []correlate.Edge, k int, key func(correlate.Edge) string) []correlate.Edge {
	groups := make(map[string][]int)
	for i, e := range edges {
		groups[key(e)] = append(groups[key(e)], i)
	}

	keep := make([]bool, len(edges))
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return edges[idx[a]].Importance > edges[idx[b]].Importance
		})
		if len(idx) > k {
			idx = idx[:k]
		}
		for _, i := range idx {
			keep[i] = true
		}
	}

	out := make([]correlate.Edge, 0, len(edges))
	for i, e := range edges {
		if keep[i] {
			out = append(out, e)
		}
	}
	return out
}
