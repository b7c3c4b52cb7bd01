// Package target derives a binary essentiality label from one dependency
// column: cell lines in the bottom quantile of the score distribution are
// marked essential.
package target

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/oncograph/depnet/pkg/artifacts"
	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/table"
)

// ErrNoObservations means the chosen column has no finite scores.
var ErrNoObservations = errors.New("dependency column has no finite scores")

// Label is one cell line's score and binary essentiality call.
type Label struct {
	ModelID   string
	Score     float64
	Essential int
}

// Result holds the labeled cohort and the threshold that split it.
type Result struct {
	Column    string
	Quantile  float64
	Threshold float64
	Labels    []Label
}

// Prepare labels every model in dep: scores at or below the bottom-quantile
// threshold get Essential=1. Rows with a missing score keep a NaN score and
// are labeled 0.
func Prepare(dep *table.Table, column string, quantile float64, log logging.Logger) (*Result, error) {
	scores, err := dep.Column(column)
	if err != nil {
		return nil, err
	}

	finite := make([]float64, 0, len(scores))
	for _, v := range scores {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoObservations, column)
	}
	sort.Float64s(finite)
	threshold := stat.Quantile(quantile, stat.LinInterp, finite, nil)

	res := &Result{
		Column:    column,
		Quantile:  quantile,
		Threshold: threshold,
		Labels:    make([]Label, 0, dep.NumRows()),
	}
	positives := 0
	for i, id := range dep.ModelIDs {
		label := Label{ModelID: id, Score: scores[i]}
		if !math.IsNaN(scores[i]) && scores[i] <= threshold {
			label.Essential = 1
			positives++
		}
		res.Labels = append(res.Labels, label)
	}

	log.Info("target labels prepared",
		logging.Stage("target"),
		logging.String("column", column),
		logging.Float64("threshold", threshold),
		logging.Int("models", len(res.Labels)),
		logging.Int("essential", positives),
	)
	return res, nil
}

// WriteCSV atomically persists the labels. Missing scores become empty cells.
func (r *Result) WriteCSV(path string) error {
	_, err := artifacts.WriteAtomic(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{"ModelID", "dependency_score", "essential"}); err != nil {
			return err
		}
		for _, l := range r.Labels {
			score := ""
			if !math.IsNaN(l.Score) {
				score = strconv.FormatFloat(l.Score, 'g', -1, 64)
			}
			if err := w.Write([]string{l.ModelID, score, strconv.Itoa(l.Essential)}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
