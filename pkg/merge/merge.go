// Package merge implements the table merger: it loads each configured omics
// source, binarizes mutation and copy-number signals, and inner-joins
// everything on ModelID into one feature matrix.
package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/table"
	"github.com/oncograph/depnet/pkg/validation"
)

// Source kinds, mirrored by validation.SourceRequest's oneof tag
const (
	KindExpression = "expression"
	KindMutation   = "mutation"
	KindCNV        = "cnv"
)

// ErrNoUsableSources is returned when every configured source is absent or empty.
var ErrNoUsableSources = errors.New("no usable omics sources were loaded")

// Options configures a merge run.
type Options struct {
	// DataDir is resolved against relative source paths
	DataDir string
	// Sources lists the omics tables to load, in join order
	Sources []validation.SourceRequest
	// CNVLossThreshold marks a loss call for cnv sources
	CNVLossThreshold float64
}

// Run loads, binarizes, and joins the configured sources. Sources whose file
// does not exist are skipped with a warning; a source that exists but cannot
// be parsed is fatal. The result is never empty: zero surviving rows is an
// error and nothing is returned.
func Run(opts Options, log logging.Logger) (*table.Table, error) {
	var merged *table.Table

	loaded := 0
	for i := range opts.Sources {
		src := opts.Sources[i]
		if err := validation.ValidateSourceRequest(&src); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}

		path := src.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.DataDir, path)
		}

		if _, err := os.Stat(path); err != nil {
			log.Warn("source table absent, skipping",
				logging.Stage("merge"),
				logging.String("label", src.Label),
				logging.String("path", path),
			)
			continue
		}

		tbl, err := table.ReadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", src.Label, err)
		}

		switch src.Kind {
		case KindMutation:
			tbl.BinarizeNonzero()
		case KindCNV:
			tbl.BinarizeLoss(opts.CNVLossThreshold)
		case KindExpression:
			// continuous values pass through
		}

		log.Info("source loaded",
			logging.Stage("merge"),
			logging.String("label", src.Label),
			logging.String("kind", src.Kind),
			logging.Int("models", tbl.NumRows()),
			logging.Int("features", tbl.NumCols()),
		)

		loaded++
		if merged == nil {
			merged = tbl
			continue
		}

		joined, err := merged.InnerJoin(tbl, src.Label)
		if err != nil {
			return nil, fmt.Errorf("joining source %s: %w", src.Label, err)
		}
		log.Info("source joined",
			logging.Stage("merge"),
			logging.String("label", src.Label),
			logging.Int("overlap_models", joined.NumRows()),
		)
		merged = joined
	}

	if loaded == 0 || merged == nil {
		return nil, ErrNoUsableSources
	}
	if merged.NumRows() == 0 {
		// InnerJoin guards this already; a single empty source cannot occur
		// because ReadCSV rejects zero-row tables
		return nil, table.ErrNoCommonModels
	}

	log.Info("merge complete",
		logging.Stage("merge"),
		logging.Int("models", merged.NumRows()),
		logging.Int("features", merged.NumCols()),
	)
	return merged, nil
}
