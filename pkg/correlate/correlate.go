// Package correlate scores biomarker-dependency association by correlating
// z-scored columns through block matrix products. The dot product of two
// standardized columns divided by n equals Pearson r only because the z-score
// step zero-fills residual NaNs; that approximation is deliberate and matches
// the upstream analysis.
package correlate

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/parallel"
	"github.com/oncograph/depnet/pkg/table"
)

// ErrNoEdges is returned when no correlation clears the configured threshold.
var ErrNoEdges = errors.New("no biomarker-dependency correlation cleared the threshold")

// Edge is one scored biomarker-dependency link.
type Edge struct {
	Biomarker  string
	Dependency string
	// Corr is the signed correlation estimate
	Corr float64
	// Importance is |Corr| renormalized per dependency into (0,1]
	Importance float64
}

// Options configures the scorer.
type Options struct {
	// TopKPerBiomarker keeps at most this many links per biomarker
	TopKPerBiomarker int
	// MinAbsCorr discards links with |r| below this value
	MinAbsCorr float64
	// BatchSize is the number of biomarker columns per block multiply
	BatchSize int
	// Workers bounds the batch fan-out; 0 means GOMAXPROCS
	Workers int
}

// Score aligns the two tables on ModelID, z-scores both, and emits the
// per-biomarker top-K links above the threshold, renormalized per dependency.
func Score(bio, dep *table.Table, opts Options, log logging.Logger) ([]Edge, error) {
	bio, dep, err := table.Align(bio, dep)
	if err != nil {
		return nil, fmt.Errorf("aligning biomarker and dependency tables: %w", err)
	}
	bio.DropAllNaNColumns()
	dep.DropAllNaNColumns()

	n := bio.NumRows()
	log.Info("tables aligned",
		logging.Stage("score"),
		logging.Int("models", n),
		logging.Int("biomarkers", bio.NumCols()),
		logging.Int("dependencies", dep.NumCols()),
	)

	bz := zscore(bio)
	dz := zscore(dep)

	batches := batchRanges(bio.NumCols(), opts.BatchSize)
	perBatch := make([][]Edge, len(batches))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pool, err := parallel.NewWorkerPool(workers)
	if err != nil {
		return nil, err
	}

	for bi, r := range batches {
		bi, r := bi, r
		pool.Submit(func() {
			perBatch[bi] = scoreBatch(bz, dz, bio.Columns, dep.Columns, r, n, opts)
		})
	}
	// A panicking batch would silently drop its edges; fail the run instead
	if err := pool.Wait(); err != nil {
		return nil, fmt.Errorf("scoring batches: %w", err)
	}

	// Concatenate in batch order so output is independent of scheduling
	edges := make([]Edge, 0)
	for _, batch := range perBatch {
		edges = append(edges, batch...)
	}
	if len(edges) == 0 {
		return nil, ErrNoEdges
	}

	renormalize(edges)

	log.Info("correlation links scored",
		logging.Stage("score"),
		logging.Int("links", len(edges)),
	)
	return edges, nil
}

type colRange struct{ lo, hi int }

func batchRanges(cols, size int) []colRange {
	if size <= 0 {
		size = cols
	}
	ranges := make([]colRange, 0, (cols+size-1)/size)
	for lo := 0; lo < cols; lo += size {
		hi := lo + size
		if hi > cols {
			hi = cols
		}
		ranges = append(ranges, colRange{lo, hi})
	}
	return ranges
}

// scoreBatch computes corr = Bzᵀ·Dz / n for one slice of biomarker columns
// and keeps each biomarker's top-K links above the threshold.
func scoreBatch(bz, dz *mat.Dense, bioCols, depCols []string, r colRange, n int, opts Options) []Edge {
	rows, _ := bz.Dims()
	batch := bz.Slice(0, rows, r.lo, r.hi)

	var block mat.Dense
	block.Mul(batch.T(), dz)
	block.Scale(1/float64(n), &block)

	edges := make([]Edge, 0)
	for b := r.lo; b < r.hi; b++ {
		row := block.RawRowView(b - r.lo)
		edges = append(edges, topK(bioCols[b], depCols, row, opts)...)
	}
	return edges
}

// topK selects the biomarker's strongest dependencies by |r|, requiring
// |r| >= MinAbsCorr. Ties keep the dependency column order.
func topK(biomarker string, depCols []string, corr []float64, opts Options) []Edge {
	idx := make([]int, 0, len(corr))
	for j, v := range corr {
		if math.Abs(v) >= opts.MinAbsCorr {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(corr[idx[a]]) > math.Abs(corr[idx[b]])
	})
	if len(idx) > opts.TopKPerBiomarker {
		idx = idx[:opts.TopKPerBiomarker]
	}

	edges := make([]Edge, 0, len(idx))
	for _, j := range idx {
		edges = append(edges, Edge{
			Biomarker:  biomarker,
			Dependency: depCols[j],
			Corr:       corr[j],
			Importance: math.Abs(corr[j]),
		})
	}
	return edges
}

// renormalize divides each edge's importance by its dependency's maximum,
// mapping every dependency's strongest link to exactly 1.
func renormalize(edges []Edge) {
	maxByDep := make(map[string]float64)
	for _, e := range edges {
		if e.Importance > maxByDep[e.Dependency] {
			maxByDep[e.Dependency] = e.Importance
		}
	}
	for i := range edges {
		if max := maxByDep[edges[i].Dependency]; max > 0 {
			edges[i].Importance /= max
		}
	}
}

// zscore standardizes every column with the population standard deviation.
// Columns with no variance (or no observed values) become all zero, and any
// remaining NaN cell is zero-filled so the downstream dot product stays finite.
func zscore(t *table.Table) *mat.Dense {
	rows, cols := t.NumRows(), t.NumCols()
	out := mat.NewDense(rows, cols, nil)

	vals := make([]float64, 0, rows)
	for j := 0; j < cols; j++ {
		vals = vals[:0]
		for i := 0; i < rows; i++ {
			if v := t.Data[i][j]; !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue // column stays zero
		}

		mean := stat.Mean(vals, nil)
		std := math.Sqrt(stat.MomentAbout(2, vals, mean, nil))
		if std == 0 {
			continue
		}

		for i := 0; i < rows; i++ {
			v := t.Data[i][j]
			if math.IsNaN(v) {
				continue // zero-filled
			}
			out.Set(i, j, (v-mean)/std)
		}
	}
	return out
}
