package artifacts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/oncograph/depnet/pkg/bigraph"
	"github.com/oncograph/depnet/pkg/community"
)

// EncodeCommunities writes the node-to-community assignment as CSV, one row
// per node in community order.
func EncodeCommunities(w io.Writer, res *community.Result, g *bigraph.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node", "class", "community"}); err != nil {
		return err
	}
	for _, c := range res.Communities {
		for _, node := range c.Nodes {
			class, ok := g.Class(node)
			if !ok {
				return fmt.Errorf("community node %s not in graph", node)
			}
			record := []string{node, class.String(), strconv.Itoa(c.ID)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCommunities atomically persists the assignment to path.
func WriteCommunities(path string, res *community.Result, g *bigraph.Graph) (int64, error) {
	return WriteAtomic(path, func(w io.Writer) error {
		return EncodeCommunities(w, res, g)
	})
}
