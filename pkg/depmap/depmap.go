// Package depmap loads the model-to-gene mapping distributed with DepMap
// releases. Column names drift between releases, so headers are matched
// case-insensitively against the known aliases.
package depmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oncograph/depnet/pkg/artifacts"
	"github.com/oncograph/depnet/pkg/correlate"
	"github.com/oncograph/depnet/pkg/logging"
)

var (
	// ErrNoModelColumn means no recognizable model id column was found.
	ErrNoModelColumn = errors.New("no model id column in mapping file")
	// ErrNoGeneColumn means no gene column was found.
	ErrNoGeneColumn = errors.New("no gene column in mapping file")
	// ErrEmptyMapping means the file held headers but no usable rows.
	ErrEmptyMapping = errors.New("mapping file has no usable rows")
)

// modelAliases are the header spellings different releases use for the
// ACH model identifier.
var modelAliases = map[string]bool{
	"modelid":   true,
	"depmap_id": true,
	"ach_id":    true,
}

// Entry is one model-to-gene association.
type Entry struct {
	ModelID string
	Gene    string
}

// Mapping is a deduplicated model-to-gene table, in file order.
type Mapping struct {
	entries []Entry
	byModel map[string]string
}

// Load reads a mapping CSV, locating the model and gene columns by alias
// and keeping the first occurrence of each (model, gene) pair.
func Load(path string, log logging.Logger) (*Mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read mapping header: %w", err)
	}

	modelIdx, geneIdx := -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if modelIdx < 0 && modelAliases[name] {
			modelIdx = i
		}
		if geneIdx < 0 && strings.Contains(name, "gene") {
			geneIdx = i
		}
	}
	if modelIdx < 0 {
		return nil, fmt.Errorf("%w: headers %v", ErrNoModelColumn, header)
	}
	if geneIdx < 0 {
		return nil, fmt.Errorf("%w: headers %v", ErrNoGeneColumn, header)
	}

	m := &Mapping{byModel: make(map[string]string)}
	seen := make(map[string]bool)
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read mapping %s: %w", path, err)
		}
		if modelIdx >= len(record) || geneIdx >= len(record) {
			skipped++
			continue
		}
		model := strings.Clone(strings.TrimSpace(record[modelIdx]))
		gene := strings.Clone(strings.TrimSpace(record[geneIdx]))
		if model == "" || gene == "" {
			skipped++
			continue
		}
		key := model + "\x00" + gene
		if seen[key] {
			continue
		}
		seen[key] = true
		m.entries = append(m.entries, Entry{ModelID: model, Gene: gene})
		if _, ok := m.byModel[model]; !ok {
			m.byModel[model] = gene
		}
	}
	if len(m.entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMapping, path)
	}

	if skipped > 0 {
		log.Warn("skipped malformed mapping rows",
			logging.String("path", path),
			logging.Int("skipped", skipped),
		)
	}
	log.Info("dependency map loaded",
		logging.String("path", path),
		logging.Int("entries", len(m.entries)),
	)
	return m, nil
}

// Len returns the number of associations.
func (m *Mapping) Len() int { return len(m.entries) }

// Entries returns the associations in file order.
func (m *Mapping) Entries() []Entry { return m.entries }

// Gene returns the first gene recorded for a model id.
func (m *Mapping) Gene(modelID string) (string, bool) {
	g, ok := m.byModel[modelID]
	return g, ok
}

// Rename translates one identifier; unmapped identifiers pass through.
func (m *Mapping) Rename(id string) string {
	if g, ok := m.byModel[id]; ok {
		return g
	}
	return id
}

// Apply renames the dependency endpoint of each edge through the mapping.
func (m *Mapping) Apply(edges []correlate.Edge) []correlate.Edge {
	out := make([]correlate.Edge, len(edges))
	for i, e := range edges {
		e.Dependency = m.Rename(e.Dependency)
		out[i] = e
	}
	return out
}

// ApplyNames renames a dependency name list through the mapping.
func (m *Mapping) ApplyNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = m.Rename(n)
	}
	return out
}

// WriteCSV atomically writes the mapping with the canonical ACH_ID,Gene
// header.
func (m *Mapping) WriteCSV(path string) error {
	_, err := artifacts.WriteAtomic(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{"ACH_ID", "Gene"}); err != nil {
			return err
		}
		for _, e := range m.entries {
			if err := w.Write([]string{e.ModelID, e.Gene}); err != nil {
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
