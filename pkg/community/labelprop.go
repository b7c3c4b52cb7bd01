package community

import (
	"github.com/oncograph/depnet/pkg/bigraph"
)

// labelPropagation assigns communities by repeatedly giving each node the
// label carrying the most edge weight among its neighbors, until no label
// changes or maxIterations passes. Node order is fixed and weight ties go to
// the smaller label, so a given graph always yields the same partition.
func labelPropagation(g *bigraph.Graph, maxIterations int) (*Result, error) {
	nodes := g.Nodes()

	// Bipartite adjacency in both directions
	neighbors := make(map[string]map[string]float64, len(nodes))
	for _, n := range nodes {
		neighbors[n] = make(map[string]float64)
	}
	for _, e := range g.Edges() {
		neighbors[e.Biomarker][e.Dependency] = e.Weight
		neighbors[e.Dependency][e.Biomarker] = e.Weight
	}

	// Each node starts in its own community
	labels := make(map[string]int, len(nodes))
	for i, n := range nodes {
		labels[n] = i
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false

		for _, n := range nodes {
			if len(neighbors[n]) == 0 {
				continue
			}

			labelWeight := make(map[int]float64)
			for m, w := range neighbors[n] {
				labelWeight[labels[m]] += w
			}

			bestLabel := labels[n]
			bestWeight := 0.0
			for label, w := range labelWeight {
				if w > bestWeight || (w == bestWeight && label < bestLabel) {
					bestWeight = w
					bestLabel = label
				}
			}

			if bestLabel != labels[n] {
				labels[n] = bestLabel
				changed = true
			}
		}

		if !changed {
			break // converged
		}
	}

	// Renumber labels to 0..C-1 in first-appearance order over the node list
	remap := make(map[int]int)
	byCommunity := make(map[int][]string)
	order := make([]int, 0)
	for _, n := range nodes {
		label := labels[n]
		if _, ok := remap[label]; !ok {
			remap[label] = len(remap)
			order = append(order, label)
		}
		byCommunity[label] = append(byCommunity[label], n)
	}

	result := &Result{
		Communities:   make([]*Community, 0, len(order)),
		NodeCommunity: make(map[string]int, len(nodes)),
	}
	for _, label := range order {
		cid := remap[label]
		members := byCommunity[label]
		for _, n := range members {
			result.NodeCommunity[n] = cid
		}
		result.Communities = append(result.Communities, &Community{
			ID:    cid,
			Nodes: members,
			Size:  len(members),
		})
	}
	result.Modularity = weightedModularity(g, result.NodeCommunity)
	return result, nil
}

// weightedModularity computes Q = Σ [w_c/m - (d_c/2m)²] over communities,
// with m the total edge weight and d_c the weighted degree sum inside c.
func weightedModularity(g *bigraph.Graph, assignment map[string]int) float64 {
	m := 0.0
	for _, e := range g.Edges() {
		m += e.Weight
	}
	if m == 0 {
		return 0
	}

	intra := make(map[int]float64)
	degree := make(map[int]float64)
	for _, e := range g.Edges() {
		cb := assignment[e.Biomarker]
		cd := assignment[e.Dependency]
		if cb == cd {
			intra[cb] += e.Weight
		}
		degree[cb] += e.Weight
		degree[cd] += e.Weight
	}

	q := 0.0
	for c, d := range degree {
		q += intra[c]/m - (d/(2*m))*(d/(2*m))
	}
	return q
}
