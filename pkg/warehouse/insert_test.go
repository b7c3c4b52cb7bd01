package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncograph/depnet/pkg/bigraph"
	"github.com/oncograph/depnet/pkg/community"
	"github.com/oncograph/depnet/pkg/correlate"
	"github.com/oncograph/depnet/pkg/logging"
)

func TestEdgeRows(t *testing.T) {
	edges := []correlate.Edge{
		{Biomarker: "KRAS_mut", Dependency: "PTK2 (5747)", Corr: -0.4, Importance: 0.9},
		{Biomarker: "EGFR_expr", Dependency: "KRAS (3845)", Corr: 0.2, Importance: 0.5},
	}

	rows := edgeRows("run-1", edges)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"run-1", "KRAS_mut", "PTK2 (5747)", -0.4, 0.9}, rows[0])
	assert.Equal(t, []any{"run-1", "EGFR_expr", "KRAS (3845)", 0.2, 0.5}, rows[1])
}

func TestCommunityRows(t *testing.T) {
	g, err := bigraph.New([]string{"bm1"}, []string{"dep1"})
	require.NoError(t, err)
	require.NoError(t, g.AddEdge("bm1", "dep1", 0.7))

	res, err := community.Detect(g, community.Options{
		Algorithm: community.AlgorithmLabelProp, MaxIterations: 50,
	}, logging.NewNopLogger())
	require.NoError(t, err)

	rows, err := communityRows("run-1", res, g)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "run-1", row[0])
	}

	// A node outside the graph is a hard error
	res.Communities[0].Nodes = append(res.Communities[0].Nodes, "stray")
	_, err = communityRows("run-1", res, g)
	assert.Error(t, err)
}
