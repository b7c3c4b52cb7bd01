// Package artifacts owns the on-disk output contract: file layout under the
// output directory, atomic writes, CSV codecs for edges and communities, the
// two human-readable summaries, and a digest manifest for the whole run.
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names under the output directory.
const (
	FileMergedBiomarkers  = "merged_biomarkers.csv"
	FileDependencies      = "dependencies.csv"
	FileProcessedFeatures = "processed_features.csv"
	FileNetworkEdges      = "network_edges.csv"
	FileNetwork           = "bipartite_network.json"
	FileCommunities       = "communities.csv"
	FileNetworkSummary    = "network_summary.txt"
	FileCommunitySummary  = "community_summary.txt"
	FileDependencyMap     = "dependency_map.csv"
	FileTarget            = "target.csv"
	FileManifest          = "manifest.json"
)

// ErrMissingArtifact reports a required artifact absent or empty on disk.
var ErrMissingArtifact = errors.New("required artifact missing or empty")

// Layout resolves artifact paths under one output directory.
type Layout struct {
	OutDir string
	// Compress switches the network artifact to snappy framing
	Compress bool
}

// NewLayout creates the output directory if needed.
func NewLayout(outDir string, compress bool) (*Layout, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outDir, err)
	}
	return &Layout{OutDir: outDir, Compress: compress}, nil
}

func (l *Layout) path(name string) string { return filepath.Join(l.OutDir, name) }

func (l *Layout) MergedBiomarkers() string  { return l.path(FileMergedBiomarkers) }
func (l *Layout) Dependencies() string      { return l.path(FileDependencies) }
func (l *Layout) ProcessedFeatures() string { return l.path(FileProcessedFeatures) }
func (l *Layout) NetworkEdges() string      { return l.path(FileNetworkEdges) }
func (l *Layout) Communities() string       { return l.path(FileCommunities) }
func (l *Layout) NetworkSummary() string    { return l.path(FileNetworkSummary) }
func (l *Layout) CommunitySummary() string  { return l.path(FileCommunitySummary) }
func (l *Layout) DependencyMap() string     { return l.path(FileDependencyMap) }
func (l *Layout) Target() string            { return l.path(FileTarget) }
func (l *Layout) Manifest() string          { return l.path(FileManifest) }

// Network returns the graph path, with the compressed extension when enabled.
func (l *Layout) Network() string {
	if l.Compress {
		return l.path(FileNetwork + ".sz")
	}
	return l.path(FileNetwork)
}

// Require checks that each named artifact exists and is non-empty. Stages
// that consume earlier outputs call this before reading.
func (l *Layout) Require(paths ...string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrMissingArtifact, p)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%w: %s is empty", ErrMissingArtifact, p)
		}
	}
	return nil
}
