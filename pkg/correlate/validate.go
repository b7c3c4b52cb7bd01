package correlate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/oncograph/depnet/pkg/table"
)

// MinPairObservations is the smallest overlap a direct pair test accepts.
const MinPairObservations = 5

// ErrInsufficientOverlap is returned when too few models carry both values.
var ErrInsufficientOverlap = errors.New("insufficient overlapping models for pair correlation")

// PairResult holds a direct biomarker-dependency correlation check computed
// on the raw (not z-scored) columns, NaNs masked pairwise. It is the exact
// counterpart to the scorer's dot-product approximation.
type PairResult struct {
	Pearson  float64
	Spearman float64
	N        int
}

// CorrelatePair runs Pearson and Spearman on one biomarker column against one
// dependency column, using only models where both values are observed.
func CorrelatePair(bio, dep *table.Table, bioCol, depCol string) (PairResult, error) {
	bio, dep, err := table.Align(bio, dep)
	if err != nil {
		return PairResult{}, err
	}

	x, err := bio.Column(bioCol)
	if err != nil {
		return PairResult{}, fmt.Errorf("biomarker column: %w", err)
	}
	y, err := dep.Column(depCol)
	if err != nil {
		return PairResult{}, fmt.Errorf("dependency column: %w", err)
	}

	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < MinPairObservations {
		return PairResult{}, fmt.Errorf("%w: %d < %d", ErrInsufficientOverlap, len(xs), MinPairObservations)
	}

	return PairResult{
		Pearson:  stat.Correlation(xs, ys, nil),
		Spearman: stat.Correlation(ranks(xs), ranks(ys), nil),
		N:        len(xs),
	}, nil
}

// ranks returns average ranks (1-based), with ties sharing their mean rank.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })

	r := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && v[idx[j]] == v[idx[i]] {
			j++
		}
		// ranks i+1..j averaged across the tie group
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			r[idx[k]] = avg
		}
		i = j
	}
	return r
}
