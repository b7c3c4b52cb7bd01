package bigraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

// CompressedExt marks snappy-compressed graph files.
const CompressedExt = ".sz"

// document is the self-describing serialized form: explicit node-class tags
// and a flat weighted edge list, readable without this package.
type document struct {
	Format       string    `json:"format"`
	Biomarkers   []string  `json:"biomarkers"`
	Dependencies []string  `json:"dependencies"`
	Edges        []edgeDoc `json:"edges"`
}

type edgeDoc struct {
	Biomarker  string  `json:"biomarker"`
	Dependency string  `json:"dependency"`
	Weight     float64 `json:"weight"`
}

const formatTag = "depnet-bipartite-v1"

// Encode writes the graph as JSON to w.
func (g *Graph) Encode(w io.Writer) error {
	doc := document{
		Format:       formatTag,
		Biomarkers:   g.Biomarkers(),
		Dependencies: g.Dependencies(),
		Edges:        make([]edgeDoc, 0, g.NumEdges()),
	}
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, edgeDoc(e))
	}

	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}

// Decode reads a graph from JSON, re-running every structural guard so a
// hand-edited file cannot smuggle in same-class edges or duplicates.
func Decode(r io.Reader) (*Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode graph document: %w", err)
	}
	if doc.Format != formatTag {
		return nil, fmt.Errorf("unexpected graph format %q, want %q", doc.Format, formatTag)
	}

	g, err := New(doc.Biomarkers, doc.Dependencies)
	if err != nil {
		return nil, err
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(e.Biomarker, e.Dependency, e.Weight); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// WriteFile persists the graph; paths ending in .sz are snappy-compressed.
func (g *Graph) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if strings.HasSuffix(path, CompressedExt) {
		sw := snappy.NewBufferedWriter(file)
		if err := g.Encode(sw); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := sw.Close(); err != nil {
			return fmt.Errorf("flush %s: %w", path, err)
		}
		return file.Close()
	}

	if err := g.Encode(file); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}

// ReadFile loads a graph written by WriteFile.
func ReadFile(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, CompressedExt) {
		r = snappy.NewReader(file)
	}
	return Decode(r)
}
