package correlate

import (
	"errors"
	"math"
	"testing"

	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/table"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func mustTable(t *testing.T, ids, cols []string, data [][]float64) *table.Table {
	t.Helper()
	tbl, err := table.New(ids, cols, data)
	if err != nil {
		t.Fatalf("table.New failed: %v", err)
	}
	return tbl
}

func defaultOpts() Options {
	return Options{TopKPerBiomarker: 50, MinAbsCorr: 0.15, BatchSize: 200, Workers: 1}
}

func TestTopK_WorkedExample(t *testing.T) {
	// One biomarker against four dependencies with r = 0.9, -0.85, 0.2, 0.05.
	// K=2 and min 0.1 must keep exactly the 0.9 and -0.85 links in that order.
	corr := []float64{0.9, -0.85, 0.2, 0.05}
	deps := []string{"d1", "d2", "d3", "d4"}

	edges := topK("bm", deps, corr, Options{TopKPerBiomarker: 2, MinAbsCorr: 0.1})

	if len(edges) != 2 {
		t.Fatalf("Kept %d edges, want 2", len(edges))
	}
	if edges[0].Dependency != "d1" || !approx(edges[0].Corr, 0.9, 1e-12) {
		t.Errorf("First edge = %+v, want d1 at 0.9", edges[0])
	}
	if edges[1].Dependency != "d2" || !approx(edges[1].Corr, -0.85, 1e-12) {
		t.Errorf("Second edge = %+v, want d2 at -0.85", edges[1])
	}
	if edges[1].Importance != 0.85 {
		t.Errorf("Importance should be |r| before renormalization, got %v", edges[1].Importance)
	}
}

func TestTopK_TiesKeepColumnOrder(t *testing.T) {
	corr := []float64{0.5, -0.5, 0.5}
	deps := []string{"d1", "d2", "d3"}

	edges := topK("bm", deps, corr, Options{TopKPerBiomarker: 2, MinAbsCorr: 0.1})

	if edges[0].Dependency != "d1" || edges[1].Dependency != "d2" {
		t.Errorf("Tied scores must keep column order, got %s then %s",
			edges[0].Dependency, edges[1].Dependency)
	}
}

func TestZScore_PopulationStd(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b", "c", "d"}, []string{"x"},
		[][]float64{{1}, {2}, {3}, {4}})

	z := zscore(tbl)

	// mean 2.5, population std sqrt(1.25)
	want := (1.0 - 2.5) / math.Sqrt(1.25)
	if !approx(z.At(0, 0), want, 1e-12) {
		t.Errorf("z(0,0) = %v, want %v", z.At(0, 0), want)
	}
	sum := 0.0
	for i := 0; i < 4; i++ {
		sum += z.At(i, 0)
	}
	if !approx(sum, 0, 1e-12) {
		t.Errorf("z-scored column should sum to 0, got %v", sum)
	}
}

func TestZScore_ZeroVarianceAndNaN(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b", "c"}, []string{"flat", "gappy"},
		[][]float64{{7, 1}, {7, math.NaN()}, {7, 3}})

	z := zscore(tbl)

	for i := 0; i < 3; i++ {
		if z.At(i, 0) != 0 {
			t.Errorf("Zero-variance column must z-score to 0, got %v at row %d", z.At(i, 0), i)
		}
	}
	if z.At(1, 1) != 0 {
		t.Errorf("NaN cell must zero-fill, got %v", z.At(1, 1))
	}
}

func TestScore_PerfectAndAntiCorrelation(t *testing.T) {
	ids := []string{"m1", "m2", "m3", "m4", "m5"}
	bio := mustTable(t, ids, []string{"bm_up", "bm_down"}, [][]float64{
		{1, 5}, {2, 4}, {3, 3}, {4, 2}, {5, 1},
	})
	dep := mustTable(t, ids, []string{"gene"}, [][]float64{
		{1}, {2}, {3}, {4}, {5},
	})

	edges, err := Score(bio, dep, defaultOpts(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if len(edges) != 2 {
		t.Fatalf("Got %d edges, want 2", len(edges))
	}
	byBio := map[string]Edge{}
	for _, e := range edges {
		byBio[e.Biomarker] = e
	}
	if e := byBio["bm_up"]; !approx(e.Corr, 1.0, 1e-9) {
		t.Errorf("bm_up corr = %v, want 1.0", e.Corr)
	}
	if e := byBio["bm_down"]; !approx(e.Corr, -1.0, 1e-9) {
		t.Errorf("bm_down corr = %v, want -1.0", e.Corr)
	}
	// Renormalization maps the dependency's max |r| to exactly 1
	for _, e := range edges {
		if e.Importance <= 0 || e.Importance > 1 {
			t.Errorf("Importance %v outside (0,1]", e.Importance)
		}
	}
}

func TestScore_ThresholdFiltersEverything(t *testing.T) {
	ids := []string{"m1", "m2", "m3", "m4"}
	// Exactly orthogonal after z-scoring: corr = 0
	bio := mustTable(t, ids, []string{"bm"}, [][]float64{{1}, {2}, {1}, {2}})
	dep := mustTable(t, ids, []string{"gene"}, [][]float64{{1}, {1}, {2}, {2}})

	_, err := Score(bio, dep, defaultOpts(), logging.NewNopLogger())
	if !errors.Is(err, ErrNoEdges) {
		t.Fatalf("Expected ErrNoEdges, got %v", err)
	}
}

func TestScore_BatchSizeInvariant(t *testing.T) {
	ids := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	bio := mustTable(t, ids, []string{"b1", "b2", "b3"}, [][]float64{
		{1, 6, 2}, {2, 5, 4}, {3, 4, 1}, {4, 3, 5}, {5, 2, 3}, {6, 1, 6},
	})
	dep := mustTable(t, ids, []string{"d1", "d2"}, [][]float64{
		{2, 9}, {4, 7}, {6, 8}, {8, 4}, {10, 3}, {12, 1},
	})

	opts := defaultOpts()
	opts.MinAbsCorr = 0.01

	opts.BatchSize = 1
	small, err := Score(bio, dep, opts, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Score (batch=1) failed: %v", err)
	}

	opts.BatchSize = 100
	opts.Workers = 4
	big, err := Score(bio, dep, opts, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Score (batch=100) failed: %v", err)
	}

	if len(small) != len(big) {
		t.Fatalf("Edge counts differ: %d vs %d", len(small), len(big))
	}
	for i := range small {
		a, b := small[i], big[i]
		if a.Biomarker != b.Biomarker || a.Dependency != b.Dependency ||
			!approx(a.Corr, b.Corr, 1e-9) || !approx(a.Importance, b.Importance, 1e-9) {
			t.Errorf("Edge %d differs across batch sizes: %+v vs %+v", i, a, b)
		}
	}
}

func TestScore_DisjointModelsFails(t *testing.T) {
	bio := mustTable(t, []string{"m1"}, []string{"b"}, [][]float64{{1}})
	dep := mustTable(t, []string{"m2"}, []string{"d"}, [][]float64{{1}})

	_, err := Score(bio, dep, defaultOpts(), logging.NewNopLogger())
	if !errors.Is(err, table.ErrNoCommonModels) {
		t.Fatalf("Expected ErrNoCommonModels, got %v", err)
	}
}

func TestCorrelatePair(t *testing.T) {
	ids := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	bio := mustTable(t, ids, []string{"bm"}, [][]float64{
		{1}, {2}, {3}, {4}, {5}, {6},
	})
	// Monotone but nonlinear: Spearman exactly 1, Pearson below 1
	dep := mustTable(t, ids, []string{"gene"}, [][]float64{
		{1}, {8}, {27}, {64}, {125}, {216},
	})

	res, err := CorrelatePair(bio, dep, "bm", "gene")
	if err != nil {
		t.Fatalf("CorrelatePair failed: %v", err)
	}
	if res.N != 6 {
		t.Errorf("N = %d, want 6", res.N)
	}
	if !approx(res.Spearman, 1.0, 1e-12) {
		t.Errorf("Spearman = %v, want 1.0", res.Spearman)
	}
	if res.Pearson >= 1.0 || res.Pearson < 0.85 {
		t.Errorf("Pearson = %v, expected strong but below 1", res.Pearson)
	}
}

func TestCorrelatePair_InsufficientOverlap(t *testing.T) {
	ids := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	nan := math.NaN()
	bio := mustTable(t, ids, []string{"bm"}, [][]float64{
		{1}, {2}, {nan}, {nan}, {nan}, {nan},
	})
	dep := mustTable(t, ids, []string{"gene"}, [][]float64{
		{1}, {2}, {3}, {4}, {5}, {6},
	})

	_, err := CorrelatePair(bio, dep, "bm", "gene")
	if !errors.Is(err, ErrInsufficientOverlap) {
		t.Fatalf("Expected ErrInsufficientOverlap, got %v", err)
	}
}

func TestRanks_Ties(t *testing.T) {
	r := ranks([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if r[i] != want[i] {
			t.Errorf("rank[%d] = %v, want %v", i, r[i], want[i])
		}
	}
}
