// Package bigraph implements the biomarker-dependency bipartite graph: two
// disjoint node classes with weighted cross-class edges only. The graph is
// built once per run and treated as read-only afterwards, apart from induced
// subgraph extraction.
package bigraph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeClassOverlap  = errors.New("node appears in both classes")
	ErrUnknownBiomarker  = errors.New("biomarker not declared in node set")
	ErrUnknownDependency = errors.New("dependency not declared in node set")
	ErrDuplicateEdge     = errors.New("edge already exists for pair")
	ErrInvalidWeight     = errors.New("edge weight must be positive")
	ErrEmptyGraph        = errors.New("graph has no edges")
)

// NodeClass distinguishes the two sides of the graph.
type NodeClass int

const (
	ClassBiomarker NodeClass = iota
	ClassDependency
)

// String returns the class tag used in the serialized form.
func (c NodeClass) String() string {
	switch c {
	case ClassBiomarker:
		return "biomarker"
	case ClassDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Edge is one weighted biomarker-dependency link.
type Edge struct {
	Biomarker  string
	Dependency string
	Weight     float64
}

// Graph is a weighted bipartite graph over declared node sets.
type Graph struct {
	bioOrder []string
	depOrder []string
	bioSet   map[string]struct{}
	depSet   map[string]struct{}

	// weights[biomarker][dependency]; edge order preserved for determinism
	weights map[string]map[string]float64
	edges   []Edge
}

// New creates an empty graph over the declared node sets. The classes must
// be disjoint; a shared identifier would make self-loop-free construction
// meaningless.
func New(biomarkers, dependencies []string) (*Graph, error) {
	g := &Graph{
		bioOrder: make([]string, 0, len(biomarkers)),
		depOrder: make([]string, 0, len(dependencies)),
		bioSet:   make(map[string]struct{}, len(biomarkers)),
		depSet:   make(map[string]struct{}, len(dependencies)),
		weights:  make(map[string]map[string]float64),
	}
	for _, b := range biomarkers {
		if _, dup := g.bioSet[b]; dup {
			continue
		}
		g.bioSet[b] = struct{}{}
		g.bioOrder = append(g.bioOrder, b)
	}
	for _, d := range dependencies {
		if _, dup := g.depSet[d]; dup {
			continue
		}
		if _, clash := g.bioSet[d]; clash {
			return nil, fmt.Errorf("%w: %s", ErrNodeClassOverlap, d)
		}
		g.depSet[d] = struct{}{}
		g.depOrder = append(g.depOrder, d)
	}
	return g, nil
}

// AddEdge links a declared biomarker to a declared dependency. Stray
// identifiers that survived sparsification are rejected here rather than
// silently becoming nodes.
func (g *Graph) AddEdge(biomarker, dependency string, weight float64) error {
	if _, ok := g.bioSet[biomarker]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBiomarker, biomarker)
	}
	if _, ok := g.depSet[dependency]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDependency, dependency)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: %f for %s-%s", ErrInvalidWeight, weight, biomarker, dependency)
	}
	if _, dup := g.weights[biomarker][dependency]; dup {
		return fmt.Errorf("%w: %s-%s", ErrDuplicateEdge, biomarker, dependency)
	}

	if g.weights[biomarker] == nil {
		g.weights[biomarker] = make(map[string]float64)
	}
	g.weights[biomarker][dependency] = weight
	g.edges = append(g.edges, Edge{Biomarker: biomarker, Dependency: dependency, Weight: weight})
	return nil
}

// NumBiomarkers returns the declared biomarker count.
func (g *Graph) NumBiomarkers() int { return len(g.bioOrder) }

// NumDependencies returns the declared dependency count.
func (g *Graph) NumDependencies() int { return len(g.depOrder) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Biomarkers returns the biomarker nodes in declaration order.
func (g *Graph) Biomarkers() []string {
	out := make([]string, len(g.bioOrder))
	copy(out, g.bioOrder)
	return out
}

// Dependencies returns the dependency nodes in declaration order.
func (g *Graph) Dependencies() []string {
	out := make([]string, len(g.depOrder))
	copy(out, g.depOrder)
	return out
}

// Nodes returns every node: biomarkers first, then dependencies.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.bioOrder)+len(g.depOrder))
	out = append(out, g.bioOrder...)
	out = append(out, g.depOrder...)
	return out
}

// Edges returns edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Weight returns the weight of the biomarker-dependency edge, if present.
func (g *Graph) Weight(biomarker, dependency string) (float64, bool) {
	w, ok := g.weights[biomarker][dependency]
	return w, ok
}

// Class reports which side a node belongs to.
func (g *Graph) Class(node string) (NodeClass, bool) {
	if _, ok := g.bioSet[node]; ok {
		return ClassBiomarker, true
	}
	if _, ok := g.depSet[node]; ok {
		return ClassDependency, true
	}
	return 0, false
}

// Degree returns the number of edges touching a node.
func (g *Graph) Degree(node string) int {
	if _, ok := g.bioSet[node]; ok {
		return len(g.weights[node])
	}
	n := 0
	for _, deps := range g.weights {
		if _, ok := deps[node]; ok {
			n++
		}
	}
	return n
}

// Subgraph extracts the induced subgraph over the given nodes, preserving
// class membership and edge weights.
func (g *Graph) Subgraph(nodes []string) (*Graph, error) {
	want := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		want[n] = struct{}{}
	}

	bio := make([]string, 0)
	dep := make([]string, 0)
	for _, b := range g.bioOrder {
		if _, ok := want[b]; ok {
			bio = append(bio, b)
		}
	}
	for _, d := range g.depOrder {
		if _, ok := want[d]; ok {
			dep = append(dep, d)
		}
	}

	sub, err := New(bio, dep)
	if err != nil {
		return nil, err
	}
	for _, e := range g.edges {
		_, hasB := want[e.Biomarker]
		_, hasD := want[e.Dependency]
		if hasB && hasD {
			if err := sub.AddEdge(e.Biomarker, e.Dependency, e.Weight); err != nil {
				return nil, err
			}
		}
	}
	return sub, nil
}
