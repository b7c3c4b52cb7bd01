// Package config defines the pipeline configuration: input/output locations,
// per-stage thresholds, and optional sinks. Every stage receives its settings
// from here instead of reading ambient paths.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oncograph/depnet/pkg/validation"
)

// Config is the root configuration for a pipeline run
type Config struct {
	// DataDir holds the raw omics source tables
	DataDir string `yaml:"data_dir"`
	// OutDir receives every artifact the pipeline writes
	OutDir string `yaml:"out_dir"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Sources lists the omics tables to merge
	Sources []validation.SourceRequest `yaml:"sources"`
	// DependencyFile is the CRISPR gene-dependency score table (relative to DataDir)
	DependencyFile string `yaml:"dependency_file"`
	// DependencyMapFile optionally maps ACH ids to gene symbols (relative to DataDir)
	DependencyMapFile string `yaml:"dependency_map_file"`

	Merge     MergeConfig     `yaml:"merge"`
	Score     ScoreConfig     `yaml:"score"`
	Sparsify  SparsifyConfig  `yaml:"sparsify"`
	Graph     GraphConfig     `yaml:"graph"`
	Community CommunityConfig `yaml:"community"`
	Target    TargetConfig    `yaml:"target"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// MergeConfig controls table binarization during the merge stage
type MergeConfig struct {
	// CNVLossThreshold marks a copy-number loss call: value < threshold becomes 1
	CNVLossThreshold float64 `yaml:"cnv_loss_threshold"`
}

// ScoreConfig controls the correlation scorer
type ScoreConfig struct {
	// TopKPerBiomarker keeps at most this many dependency links per biomarker
	TopKPerBiomarker int `yaml:"top_k_per_biomarker"`
	// MinAbsCorr discards links with |r| below this value
	MinAbsCorr float64 `yaml:"min_abs_corr"`
	// BatchSize is the number of biomarker columns scored per block multiply
	BatchSize int `yaml:"batch_size"`
	// Workers bounds the batch fan-out; 0 means GOMAXPROCS
	Workers int `yaml:"workers"`
}

// SparsifyConfig controls edge-list truncation before graph build
type SparsifyConfig struct {
	// EdgeMin discards edges with importance below this value
	EdgeMin float64 `yaml:"edge_min"`
	// TopKPerDependency caps edges per dependency node (applied first)
	TopKPerDependency int `yaml:"top_k_per_dependency"`
	// TopKPerBiomarker caps edges per biomarker node (applied second)
	TopKPerBiomarker int `yaml:"top_k_per_biomarker"`
}

// GraphConfig controls graph serialization
type GraphConfig struct {
	// Compress writes the graph artifact snappy-compressed (.json.sz)
	Compress bool `yaml:"compress"`
}

// CommunityConfig controls the partitioner
type CommunityConfig struct {
	// Algorithm is "louvain" or "labelprop"
	Algorithm string `yaml:"algorithm"`
	// Resolution is the Louvain modularity resolution parameter
	Resolution float64 `yaml:"resolution"`
	// Seed pins the Louvain random source so partitions reproduce across runs
	Seed uint64 `yaml:"seed"`
	// MaxIterations bounds label propagation
	MaxIterations int `yaml:"max_iterations"`
}

// TargetConfig controls the optional binary essentiality target derivation
type TargetConfig struct {
	Enabled bool `yaml:"enabled"`
	// DependencyColumn names the dependency score column to threshold
	DependencyColumn string `yaml:"dependency_column"`
	// Quantile defines "dependent" as the bottom fraction of scores
	Quantile float64 `yaml:"quantile"`
}

// WarehouseConfig enables the optional PostgreSQL results sink when a URL is set
type WarehouseConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

// MetricsConfig controls end-of-run metrics export
type MetricsConfig struct {
	// TextfilePath, when set, receives the run's metrics in Prometheus text
	// format (node_exporter textfile collector layout)
	TextfilePath string `yaml:"textfile_path"`
}

// DefaultConfig returns the thresholds the analysis was calibrated with
func DefaultConfig() Config {
	return Config{
		DataDir:        "data",
		OutDir:         "outputs",
		LogLevel:       "info",
		DependencyFile: "CRISPRGeneDependency.csv",
		Merge: MergeConfig{
			CNVLossThreshold: -0.3,
		},
		Score: ScoreConfig{
			TopKPerBiomarker: 50,
			MinAbsCorr:       0.15,
			BatchSize:        200,
			Workers:          0,
		},
		Sparsify: SparsifyConfig{
			EdgeMin:           0.015,
			TopKPerDependency: 250,
			TopKPerBiomarker:  150,
		},
		Graph: GraphConfig{
			Compress: false,
		},
		Community: CommunityConfig{
			Algorithm:     "louvain",
			Resolution:    1.0,
			Seed:          1,
			MaxIterations: 100,
		},
		Target: TargetConfig{
			Enabled:  false,
			Quantile: 0.10,
		},
	}
}

// Load reads a YAML config file over the defaults
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field the stages depend on, collecting all problems
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("Config")
	cv.Required("DataDir", c.DataDir)
	cv.Required("OutDir", c.OutDir)
	cv.Required("DependencyFile", c.DependencyFile)

	cv.PositiveFloat("Score.MinAbsCorr", c.Score.MinAbsCorr)
	cv.Positive("Score.TopKPerBiomarker", c.Score.TopKPerBiomarker)
	cv.Positive("Score.BatchSize", c.Score.BatchSize)
	cv.NonNegative("Score.Workers", c.Score.Workers)

	cv.PositiveFloat("Sparsify.EdgeMin", c.Sparsify.EdgeMin)
	cv.Positive("Sparsify.TopKPerDependency", c.Sparsify.TopKPerDependency)
	cv.Positive("Sparsify.TopKPerBiomarker", c.Sparsify.TopKPerBiomarker)

	cv.OneOf("Community.Algorithm", c.Community.Algorithm, []string{"louvain", "labelprop"})
	cv.PositiveFloat("Community.Resolution", c.Community.Resolution)
	cv.Positive("Community.MaxIterations", c.Community.MaxIterations)

	if c.Target.Enabled {
		cv.Required("Target.DependencyColumn", c.Target.DependencyColumn)
		cv.UnitInterval("Target.Quantile", c.Target.Quantile)
	}

	for i := range c.Sources {
		src := c.Sources[i]
		cv.Custom(fmt.Sprintf("Sources[%d]", i), func() error {
			return validation.ValidateSourceRequest(&src)
		})
	}

	return cv.Err()
}
