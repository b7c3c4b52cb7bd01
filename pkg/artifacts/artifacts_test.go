package artifacts

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncograph/depnet/pkg/bigraph"
	"github.com/oncograph/depnet/pkg/community"
	"github.com/oncograph/depnet/pkg/correlate"
	"github.com/oncograph/depnet/pkg/logging"
)

func TestLayout_Paths(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLayout(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bipartite_network.json"), l.Network())
	assert.Equal(t, filepath.Join(dir, "processed_features.csv"), l.ProcessedFeatures())

	lz, err := NewLayout(dir, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bipartite_network.json.sz"), lz.Network())
}

func TestLayout_Require(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLayout(dir, false)
	require.NoError(t, err)

	present := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(present, []byte("x\n"), 0o644))
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	assert.NoError(t, l.Require(present))
	assert.ErrorIs(t, l.Require(filepath.Join(dir, "absent.csv")), ErrMissingArtifact)
	assert.ErrorIs(t, l.Require(present, empty), ErrMissingArtifact)
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	n, err := WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// A failing writer leaves nothing behind
	_, err = WriteAtomic(filepath.Join(dir, "never.txt"), func(w io.Writer) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "never.txt"))
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left over")
}

func TestEdges_Roundtrip(t *testing.T) {
	edges := []correlate.Edge{
		{Biomarker: "KRAS_mut", Dependency: "PTK2 (5747)", Corr: -0.42, Importance: 0.97},
		{Biomarker: "EGFR_expr", Dependency: "KRAS (3845)", Corr: 0.31, Importance: 0.55},
	}

	path := filepath.Join(t.TempDir(), "processed_features.csv")
	_, err := WriteEdges(path, edges)
	require.NoError(t, err)

	back, err := ReadEdges(path)
	require.NoError(t, err)
	assert.Equal(t, edges, back)
}

func TestReadEdges_BadRows(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad,
		[]byte("biomarker,dependency,correlation,importance_score\na,b,notanumber,0.5\n"), 0o644))
	_, err := ReadEdges(bad)
	assert.Error(t, err)

	wrongHeader := filepath.Join(dir, "wrong.csv")
	require.NoError(t, os.WriteFile(wrongHeader, []byte("a,b\n"), 0o644))
	_, err = ReadEdges(wrongHeader)
	assert.Error(t, err)
}

func partitionFixture(t *testing.T) (*bigraph.Graph, *community.Result) {
	t.Helper()
	g, err := bigraph.New([]string{"bm1", "bm2"}, []string{"dep1"})
	require.NoError(t, err)
	require.NoError(t, g.AddEdge("bm1", "dep1", 0.9))
	require.NoError(t, g.AddEdge("bm2", "dep1", 0.8))

	res, err := community.Detect(g, community.Options{
		Algorithm: community.AlgorithmLabelProp, MaxIterations: 50,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return g, res
}

func TestCommunities_CSV(t *testing.T) {
	g, res := partitionFixture(t)

	path := filepath.Join(t.TempDir(), "communities.csv")
	_, err := WriteCommunities(path, res, g)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4, "header plus one row per node")
	assert.Equal(t, "node,class,community", lines[0])
	assert.Contains(t, string(data), "dep1,dependency,")
	assert.Contains(t, string(data), "bm1,biomarker,")
}

func TestSummaries(t *testing.T) {
	g, res := partitionFixture(t)
	dir := t.TempDir()

	netPath := filepath.Join(dir, FileNetworkSummary)
	_, err := WriteNetworkSummary(netPath, g, 1500*time.Millisecond)
	require.NoError(t, err)
	net, err := os.ReadFile(netPath)
	require.NoError(t, err)
	assert.Equal(t,
		"Biomarker nodes: 2\nDependency nodes: 1\nEdges: 2\nRuntime (s): 1.50\n",
		string(net))

	commPath := filepath.Join(dir, FileCommunitySummary)
	_, err = WriteCommunitySummary(commPath, g, res, 2*time.Second)
	require.NoError(t, err)
	comm, err := os.ReadFile(commPath)
	require.NoError(t, err)
	assert.Contains(t, string(comm), "Total nodes: 3\n")
	assert.Contains(t, string(comm), "Detected communities: 1\n")
	assert.Contains(t, string(comm), "Modularity: ")
}

func TestManifest_RoundtripAndVerify(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLayout(dir, false)
	require.NoError(t, err)

	a := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(a, []byte("alpha\n"), 0o644))
	absent := filepath.Join(dir, "absent.csv")

	m, err := l.WriteManifest("run-123", []string{a, absent})
	require.NoError(t, err)
	require.Len(t, m.Artifacts, 1, "absent artifacts are omitted")
	assert.Equal(t, "a.csv", m.Artifacts[0].Name)
	assert.Equal(t, int64(6), m.Artifacts[0].Bytes)
	assert.Len(t, m.Artifacts[0].Digest, 64)

	back, err := ReadManifest(l.Manifest())
	require.NoError(t, err)
	assert.Equal(t, "run-123", back.RunID)
	assert.NoError(t, back.Verify(dir))

	// Tampering is detected
	require.NoError(t, os.WriteFile(a, []byte("tampered\n"), 0o644))
	assert.Error(t, back.Verify(dir))
}
