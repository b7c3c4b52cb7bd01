package artifacts

import (
	"fmt"
	"io"
	"time"

	"github.com/oncograph/depnet/pkg/bigraph"
	"github.com/oncograph/depnet/pkg/community"
)

// WriteNetworkSummary writes the plain-text network overview.
func WriteNetworkSummary(path string, g *bigraph.Graph, elapsed time.Duration) (int64, error) {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"Biomarker nodes: %d\nDependency nodes: %d\nEdges: %d\nRuntime (s): %.2f\n",
			g.NumBiomarkers(), g.NumDependencies(), g.NumEdges(), elapsed.Seconds())
		return err
	})
}

// WriteCommunitySummary writes the plain-text partition overview.
func WriteCommunitySummary(path string, g *bigraph.Graph, res *community.Result, elapsed time.Duration) (int64, error) {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"Total nodes: %d\nTotal edges: %d\nDetected communities: %d\nModularity: %.4f\nRuntime (s): %.2f\n",
			g.NumBiomarkers()+g.NumDependencies(), g.NumEdges(),
			len(res.Communities), res.Modularity, elapsed.Seconds())
		return err
	})
}
