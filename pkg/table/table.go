// Package table implements the model-indexed numeric matrix every pipeline
// stage exchanges: one row per biological sample (ModelID), one column per
// feature or dependency score. Missing values are NaN.
package table

import (
	"fmt"
	"math"
)

// Table is a model-indexed numeric matrix.
// Rows follow ModelIDs order, columns follow Columns order.
type Table struct {
	ModelIDs []string
	Columns  []string
	// Data is row-major: Data[i][j] holds Columns[j] for ModelIDs[i].
	Data [][]float64

	rowIndex map[string]int
}

// New creates a table from pre-built slices. ModelIDs must be unique.
func New(modelIDs, columns []string, data [][]float64) (*Table, error) {
	if len(data) != len(modelIDs) {
		return nil, fmt.Errorf("row count %d does not match ModelID count %d", len(data), len(modelIDs))
	}
	idx := make(map[string]int, len(modelIDs))
	for i, id := range modelIDs {
		if _, dup := idx[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModelID, id)
		}
		idx[id] = i
	}
	for i, row := range data {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
	}
	return &Table{ModelIDs: modelIDs, Columns: columns, Data: data, rowIndex: idx}, nil
}

// NumRows returns the number of model rows.
func (t *Table) NumRows() int { return len(t.ModelIDs) }

// NumCols returns the number of feature columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// Row returns the row index for a ModelID.
func (t *Table) Row(modelID string) (int, bool) {
	i, ok := t.rowIndex[modelID]
	return i, ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	for j, c := range t.Columns {
		if c == name {
			col := make([]float64, len(t.Data))
			for i := range t.Data {
				col[i] = t.Data[i][j]
			}
			return col, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// BinarizeNonzero rewrites every cell to 1 when its absolute value is
// positive and 0 otherwise. NaNs become 0. Used for mutation matrices where
// any recorded hit counts as mutated.
func (t *Table) BinarizeNonzero() {
	for i := range t.Data {
		for j, v := range t.Data[i] {
			if !math.IsNaN(v) && math.Abs(v) > 0 {
				t.Data[i][j] = 1
			} else {
				t.Data[i][j] = 0
			}
		}
	}
}

// BinarizeLoss rewrites every cell to 1 when it is below threshold (a
// copy-number loss call) and 0 otherwise. NaNs become 0.
func (t *Table) BinarizeLoss(threshold float64) {
	for i := range t.Data {
		for j, v := range t.Data[i] {
			if !math.IsNaN(v) && v < threshold {
				t.Data[i][j] = 1
			} else {
				t.Data[i][j] = 0
			}
		}
	}
}

// DropAllNaNColumns removes columns whose every cell is NaN and reports how
// many were dropped.
func (t *Table) DropAllNaNColumns() int {
	keep := make([]int, 0, len(t.Columns))
	for j := range t.Columns {
		allNaN := true
		for i := range t.Data {
			if !math.IsNaN(t.Data[i][j]) {
				allNaN = false
				break
			}
		}
		if !allNaN {
			keep = append(keep, j)
		}
	}

	dropped := len(t.Columns) - len(keep)
	if dropped == 0 {
		return 0
	}

	cols := make([]string, len(keep))
	for k, j := range keep {
		cols[k] = t.Columns[j]
	}
	for i := range t.Data {
		row := make([]float64, len(keep))
		for k, j := range keep {
			row[k] = t.Data[i][j]
		}
		t.Data[i] = row
	}
	t.Columns = cols
	return dropped
}

// InnerJoin joins two tables on ModelID, keeping only models present in both.
// Row order follows the receiver. Columns of other that collide with existing
// names get a "_<suffix>" rename. Returns ErrNoCommonModels when the
// intersection is empty so an empty table is never produced.
func (t *Table) InnerJoin(other *Table, suffix string) (*Table, error) {
	common := make([]string, 0, len(t.ModelIDs))
	for _, id := range t.ModelIDs {
		if _, ok := other.rowIndex[id]; ok {
			common = append(common, id)
		}
	}
	if len(common) == 0 {
		return nil, ErrNoCommonModels
	}

	existing := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		existing[c] = struct{}{}
	}
	rightCols := make([]string, len(other.Columns))
	for j, c := range other.Columns {
		if _, clash := existing[c]; clash {
			rightCols[j] = c + "_" + suffix
		} else {
			rightCols[j] = c
		}
	}

	columns := make([]string, 0, len(t.Columns)+len(rightCols))
	columns = append(columns, t.Columns...)
	columns = append(columns, rightCols...)

	data := make([][]float64, len(common))
	for i, id := range common {
		li := t.rowIndex[id]
		ri := other.rowIndex[id]
		row := make([]float64, 0, len(columns))
		row = append(row, t.Data[li]...)
		row = append(row, other.Data[ri]...)
		data[i] = row
	}

	return New(common, columns, data)
}

// Align restricts both tables to their common ModelIDs in a single shared
// order. The correlation scorer requires identical row ordering before its
// matrix product.
func Align(a, b *Table) (*Table, *Table, error) {
	common := make([]string, 0, len(a.ModelIDs))
	for _, id := range a.ModelIDs {
		if _, ok := b.rowIndex[id]; ok {
			common = append(common, id)
		}
	}
	if len(common) == 0 {
		return nil, nil, ErrNoCommonModels
	}

	restrict := func(t *Table) (*Table, error) {
		data := make([][]float64, len(common))
		for i, id := range common {
			src := t.Data[t.rowIndex[id]]
			row := make([]float64, len(src))
			copy(row, src)
			data[i] = row
		}
		cols := make([]string, len(t.Columns))
		copy(cols, t.Columns)
		ids := make([]string, len(common))
		copy(ids, common)
		return New(ids, cols, data)
	}

	ra, err := restrict(a)
	if err != nil {
		return nil, nil, err
	}
	rb, err := restrict(b)
	if err != nil {
		return nil, nil, err
	}
	return ra, rb, nil
}
