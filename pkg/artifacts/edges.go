package artifacts

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/oncograph/depnet/pkg/correlate"
)

var edgeHeader = []string{"biomarker", "dependency", "correlation", "importance_score"}

// EncodeEdges writes the scored edge list as CSV.
func EncodeEdges(w io.Writer, edges []correlate.Edge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(edgeHeader); err != nil {
		return err
	}
	for _, e := range edges {
		record := []string{
			e.Biomarker,
			e.Dependency,
			strconv.FormatFloat(e.Corr, 'g', -1, 64),
			strconv.FormatFloat(e.Importance, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdges atomically persists edges to path and returns bytes written.
func WriteEdges(path string, edges []correlate.Edge) (int64, error) {
	return WriteAtomic(path, func(w io.Writer) error {
		return EncodeEdges(w, edges)
	})
}

// ReadEdges loads an edge list written by WriteEdges.
func ReadEdges(path string) ([]correlate.Edge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read edge header: %w", err)
	}
	if len(header) != len(edgeHeader) {
		return nil, fmt.Errorf("unexpected edge header %v", header)
	}

	var edges []correlate.Edge
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read edge row: %w", err)
		}
		line++

		corr, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad correlation %q: %w", line, record[2], err)
		}
		importance, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad importance %q: %w", line, record[3], err)
		}
		edges = append(edges, correlate.Edge{
			Biomarker:  strings.Clone(record[0]),
			Dependency: strings.Clone(record[1]),
			Corr:       corr,
			Importance: importance,
		})
	}
	return edges, nil
}
