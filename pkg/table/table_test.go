package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func mustTable(t *testing.T, ids, cols []string, data [][]float64) *Table {
	t.Helper()
	tbl, err := New(ids, cols, data)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tbl
}

func TestNew_RejectsDuplicateModelID(t *testing.T) {
	_, err := New([]string{"ACH-1", "ACH-1"}, []string{"g"}, [][]float64{{1}, {2}})
	if !errors.Is(err, ErrDuplicateModelID) {
		t.Fatalf("Expected ErrDuplicateModelID, got %v", err)
	}
}

func TestBinarizeNonzero(t *testing.T) {
	tbl := mustTable(t,
		[]string{"A", "B"},
		[]string{"g1", "g2", "g3"},
		[][]float64{{0, 2, math.NaN()}, {-0.5, 0, 3}},
	)

	tbl.BinarizeNonzero()

	want := [][]float64{{0, 1, 0}, {1, 0, 1}}
	for i := range want {
		for j := range want[i] {
			if tbl.Data[i][j] != want[i][j] {
				t.Errorf("cell (%d,%d) = %v, want %v", i, j, tbl.Data[i][j], want[i][j])
			}
		}
	}
}

func TestBinarizeLoss(t *testing.T) {
	tbl := mustTable(t,
		[]string{"A"},
		[]string{"g1", "g2", "g3", "g4"},
		[][]float64{{-0.5, -0.3, 0.1, math.NaN()}},
	)

	tbl.BinarizeLoss(-0.3)

	// Strictly below threshold counts as a loss call
	want := []float64{1, 0, 0, 0}
	for j, w := range want {
		if tbl.Data[0][j] != w {
			t.Errorf("cell %d = %v, want %v", j, tbl.Data[0][j], w)
		}
	}
}

func TestInnerJoin_Intersection(t *testing.T) {
	left := mustTable(t,
		[]string{"A", "B", "C"},
		[]string{"expr1"},
		[][]float64{{1}, {2}, {3}},
	)
	right := mustTable(t,
		[]string{"B", "C", "D"},
		[]string{"mut1"},
		[][]float64{{10}, {20}, {30}},
	)

	joined, err := left.InnerJoin(right, "mut")
	if err != nil {
		t.Fatalf("InnerJoin failed: %v", err)
	}

	if got, want := joined.ModelIDs, []string{"B", "C"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Joined ModelIDs = %v, want %v", got, want)
	}
	if joined.Data[0][0] != 2 || joined.Data[0][1] != 10 {
		t.Errorf("Row B = %v, want [2 10]", joined.Data[0])
	}
	if joined.Data[1][0] != 3 || joined.Data[1][1] != 20 {
		t.Errorf("Row C = %v, want [3 20]", joined.Data[1])
	}
}

func TestInnerJoin_RowBound(t *testing.T) {
	left := mustTable(t, []string{"A", "B", "C"}, []string{"x"}, [][]float64{{1}, {2}, {3}})
	right := mustTable(t, []string{"B", "C"}, []string{"y"}, [][]float64{{1}, {2}})

	joined, err := left.InnerJoin(right, "r")
	if err != nil {
		t.Fatalf("InnerJoin failed: %v", err)
	}

	minRows := left.NumRows()
	if right.NumRows() < minRows {
		minRows = right.NumRows()
	}
	if joined.NumRows() > minRows {
		t.Errorf("Inner join produced %d rows, more than min input %d", joined.NumRows(), minRows)
	}
}

func TestInnerJoin_NoOverlapFails(t *testing.T) {
	left := mustTable(t, []string{"A"}, []string{"x"}, [][]float64{{1}})
	right := mustTable(t, []string{"B"}, []string{"y"}, [][]float64{{2}})

	_, err := left.InnerJoin(right, "r")
	if !errors.Is(err, ErrNoCommonModels) {
		t.Fatalf("Expected ErrNoCommonModels, got %v", err)
	}
}

func TestInnerJoin_SuffixesCollidingColumns(t *testing.T) {
	left := mustTable(t, []string{"A"}, []string{"TP53"}, [][]float64{{1}})
	right := mustTable(t, []string{"A"}, []string{"TP53"}, [][]float64{{2}})

	joined, err := left.InnerJoin(right, "mut_dmg")
	if err != nil {
		t.Fatalf("InnerJoin failed: %v", err)
	}

	if joined.Columns[0] != "TP53" || joined.Columns[1] != "TP53_mut_dmg" {
		t.Errorf("Columns = %v, want [TP53 TP53_mut_dmg]", joined.Columns)
	}
}

func TestDropAllNaNColumns(t *testing.T) {
	tbl := mustTable(t,
		[]string{"A", "B"},
		[]string{"keep", "gone", "keep2"},
		[][]float64{{1, math.NaN(), math.NaN()}, {2, math.NaN(), 5}},
	)

	dropped := tbl.DropAllNaNColumns()

	if dropped != 1 {
		t.Errorf("Dropped %d columns, want 1", dropped)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "keep" || tbl.Columns[1] != "keep2" {
		t.Errorf("Columns = %v, want [keep keep2]", tbl.Columns)
	}
}

func TestAlign_SharedOrder(t *testing.T) {
	a := mustTable(t, []string{"A", "B", "C"}, []string{"x"}, [][]float64{{1}, {2}, {3}})
	b := mustTable(t, []string{"C", "B", "D"}, []string{"y"}, [][]float64{{30}, {20}, {40}})

	ra, rb, err := Align(a, b)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	if ra.NumRows() != 2 || rb.NumRows() != 2 {
		t.Fatalf("Aligned rows = %d/%d, want 2/2", ra.NumRows(), rb.NumRows())
	}
	for i := range ra.ModelIDs {
		if ra.ModelIDs[i] != rb.ModelIDs[i] {
			t.Errorf("Row %d: %s vs %s, orders must match", i, ra.ModelIDs[i], rb.ModelIDs[i])
		}
	}
	// b's values must follow the shared order, not b's original order
	if rb.Data[0][0] != 20 || rb.Data[1][0] != 30 {
		t.Errorf("Aligned b data = %v, want [[20] [30]]", rb.Data)
	}
}

func TestReadCSV_CoercionAndMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omics.csv")
	csv := "ModelID,Lineage,TP53,notes,BRCA1\n" +
		"ACH-000001,Lung,1.5,high,2.25\n" +
		"ACH-000002,Breast,0.5,low,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tbl, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	// Lineage is metadata, notes is all non-numeric and gets dropped
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "TP53" || tbl.Columns[1] != "BRCA1" {
		t.Fatalf("Columns = %v, want [TP53 BRCA1]", tbl.Columns)
	}
	if tbl.Data[0][0] != 1.5 || tbl.Data[0][1] != 2.25 {
		t.Errorf("Row 0 = %v", tbl.Data[0])
	}
	if !math.IsNaN(tbl.Data[1][1]) {
		t.Errorf("Empty cell should read as NaN, got %v", tbl.Data[1][1])
	}
}

func TestReadCSV_UnnamedIndexFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merged.csv")
	csv := "Unnamed: 0,TP53\nACH-000001,1\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tbl, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if tbl.ModelIDs[0] != "ACH-000001" {
		t.Errorf("ModelIDs = %v", tbl.ModelIDs)
	}
}

func TestReadCSV_MissingModelID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(path, []byte("gene,score\nTP53,1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := ReadCSV(path)
	if !errors.Is(err, ErrMissingModelID) {
		t.Fatalf("Expected ErrMissingModelID, got %v", err)
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %T", err)
	}
}

func TestReadCSV_MalformedRowFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.csv")
	// The bare quote makes the third row unparseable; the load must fail
	// rather than return the rows read so far
	csv := "ModelID,TP53\n" +
		"ACH-1,1\n" +
		"\"ACH-2,2\n" +
		"ACH-3,3\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tbl, err := ReadCSV(path)
	if err == nil {
		t.Fatalf("ReadCSV returned %d rows for a malformed file, want error", tbl.NumRows())
	}
	if tbl != nil {
		t.Error("ReadCSV must not return a partial table alongside an error")
	}
}

func TestWriteCSV_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	tbl := mustTable(t,
		[]string{"ACH-1", "ACH-2"},
		[]string{"TP53", "BRCA1"},
		[][]float64{{1.5, math.NaN()}, {0, -0.25}},
	)
	if err := tbl.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	back, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if back.NumRows() != 2 || back.NumCols() != 2 {
		t.Fatalf("Roundtrip shape %dx%d, want 2x2", back.NumRows(), back.NumCols())
	}
	if !math.IsNaN(back.Data[0][1]) {
		t.Errorf("NaN did not survive roundtrip: %v", back.Data[0][1])
	}
	if back.Data[1][1] != -0.25 {
		t.Errorf("Cell = %v, want -0.25", back.Data[1][1])
	}
}
