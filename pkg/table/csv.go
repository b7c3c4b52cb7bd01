package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ModelIDColumn is the identifier column every source table must carry.
const ModelIDColumn = "ModelID"

// unnamedIndexColumn is what pandas-exported CSVs call a written-out index.
// When ModelID is absent but this column is present, it is treated as the
// identifier (the upstream data provider emits both shapes).
const unnamedIndexColumn = "Unnamed: 0"

// MetadataColumns are provider bookkeeping columns stripped before any
// numeric work.
var MetadataColumns = map[string]struct{}{
	"Unnamed: 0":             {},
	"SequencingID":           {},
	"IsDefaultEntryForModel": {},
	"ModelConditionID":       {},
	"ProfileID":              {},
	"DataType":               {},
	"Stranded":               {},
	"SequencingDate":         {},
	"DepMapCode":             {},
	"Lineage":                {},
	"CellFormat":             {},
	"GrowthMedia":            {},
	"GrowthPattern":          {},
	"SourceModelCondition":   {},
}

// ReadCSV loads a wide omics table: locates the ModelID column, drops known
// metadata columns, coerces every remaining cell to float64 (non-numeric
// cells become NaN), and drops columns left entirely NaN.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	rawHeader, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	// Clone before the next Read recycles the record buffer
	header := make([]string, len(rawHeader))
	for i, name := range rawHeader {
		header[i] = strings.Clone(name)
	}

	idCol := -1
	for i, name := range header {
		if name == ModelIDColumn {
			idCol = i
			break
		}
	}
	if idCol == -1 {
		// Pandas index exports land in "Unnamed: 0"
		for i, name := range header {
			if name == unnamedIndexColumn {
				idCol = i
				break
			}
		}
	}
	if idCol == -1 {
		return nil, &SchemaError{Table: path, Column: ModelIDColumn, Cause: ErrMissingModelID}
	}

	// Feature columns: everything that is neither the id nor metadata
	featureIdx := make([]int, 0, len(header))
	columns := make([]string, 0, len(header))
	for i, name := range header {
		if i == idCol {
			continue
		}
		if _, meta := MetadataColumns[name]; meta {
			continue
		}
		featureIdx = append(featureIdx, i)
		columns = append(columns, name)
	}

	modelIDs := make([]string, 0, 1024)
	data := make([][]float64, 0, 1024)
	seen := make(map[string]struct{}, 1024)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError carries the line number; truncating here would
			// hand downstream stages a partial cohort with no diagnostic
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if idCol >= len(record) {
			continue
		}
		// ReuseRecord invalidates field strings on the next Read
		id := strings.Clone(record[idCol])
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateModelID, id, path)
		}
		seen[id] = struct{}{}

		row := make([]float64, len(featureIdx))
		for k, i := range featureIdx {
			if i >= len(record) {
				row[k] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				row[k] = math.NaN()
			} else {
				row[k] = v
			}
		}
		modelIDs = append(modelIDs, id)
		data = append(data, row)
	}

	if len(modelIDs) == 0 {
		return nil, &SchemaError{Table: path, Cause: ErrEmptyTable}
	}

	t, err := New(modelIDs, columns, data)
	if err != nil {
		return nil, err
	}
	t.DropAllNaNColumns()
	return t, nil
}

// WriteCSV writes the table with a leading ModelID column. NaNs become empty
// cells so a re-read coerces them back to NaN.
func (t *Table) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, ModelIDColumn)
	header = append(header, t.Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header of %s: %w", path, err)
	}

	record := make([]string, len(header))
	for i, id := range t.ModelIDs {
		record[0] = id
		for j, v := range t.Data[i] {
			if math.IsNaN(v) {
				record[j+1] = ""
			} else {
				record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %s of %s: %w", id, path, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
