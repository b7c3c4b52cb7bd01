// Package pipeline sequences the stages of a run: merge, score, sparsify,
// graph build, community detection, plus the optional mapping, target, and
// warehouse steps. Stages communicate only through artifacts on disk, so any
// stage can be re-run on its own against an existing output directory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oncograph/depnet/pkg/artifacts"
	"github.com/oncograph/depnet/pkg/bigraph"
	"github.com/oncograph/depnet/pkg/community"
	"github.com/oncograph/depnet/pkg/config"
	"github.com/oncograph/depnet/pkg/correlate"
	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/metrics"
)

// Stage names, in run order.
const (
	StageMerge       = "merge"
	StageScore       = "score"
	StageSparsify    = "sparsify"
	StageGraph       = "graph"
	StageCommunities = "communities"
	StageDepMap      = "depmap"
	StageTarget      = "target"
)

// Stages lists every stage in execution order. The mapping stage precedes
// the graph build so renamed dependency identifiers flow into the network.
var Stages = []string{
	StageMerge, StageScore, StageSparsify, StageDepMap, StageGraph,
	StageCommunities, StageTarget,
}

// ErrUnknownStage is returned for a stage name outside Stages.
var ErrUnknownStage = errors.New("unknown pipeline stage")

// StageError wraps a stage failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline runs stages against one configuration and output layout.
type Pipeline struct {
	cfg     config.Config
	log     logging.Logger
	metrics *metrics.Registry
	layout  *artifacts.Layout
	runID   string

	// In-memory results from the last full run, flushed by finalize.
	mergedModels int
	edges        []correlate.Edge
	graph        *bigraph.Graph
	partition    *community.Result
}

// New prepares a pipeline with a fresh run id.
func New(cfg config.Config, log logging.Logger, reg *metrics.Registry) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout, err := artifacts.NewLayout(cfg.OutDir, cfg.Graph.Compress)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	return &Pipeline{
		cfg:     cfg,
		log:     log.With(logging.String("run_id", runID)),
		metrics: reg,
		layout:  layout,
		runID:   runID,
	}, nil
}

// RunID returns this pipeline's run identifier.
func (p *Pipeline) RunID() string { return p.runID }

// Layout returns the output layout.
func (p *Pipeline) Layout() *artifacts.Layout { return p.layout }

// RunStage executes a single named stage against the existing artifacts.
func (p *Pipeline) RunStage(ctx context.Context, name string) error {
	var fn func(context.Context) error
	switch name {
	case StageMerge:
		fn = p.runMerge
	case StageScore:
		fn = p.runScore
	case StageSparsify:
		fn = p.runSparsify
	case StageGraph:
		fn = p.runGraph
	case StageCommunities:
		fn = p.runCommunities
	case StageDepMap:
		fn = p.runDepMap
	case StageTarget:
		fn = p.runTarget
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	return p.timed(ctx, name, fn)
}

// Run executes every stage in order, then writes the manifest, exports
// metrics, and flushes to the warehouse when configured. Optional stages
// without configuration are skipped, not failed.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.log.Info("pipeline run starting", logging.Int("stages", len(Stages)))

	for _, name := range Stages {
		if p.skippable(name) {
			p.log.Info("stage skipped", logging.Stage(name))
			continue
		}
		if err := p.RunStage(ctx, name); err != nil {
			p.metrics.RecordRun("error")
			return err
		}
	}

	if err := p.finalize(ctx); err != nil {
		p.metrics.RecordRun("error")
		return err
	}

	p.metrics.RecordRun("success")
	p.log.Info("pipeline run complete",
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// skippable reports whether an optional stage lacks the configuration it
// needs and should be left out of a full run.
func (p *Pipeline) skippable(name string) bool {
	switch name {
	case StageDepMap:
		return p.cfg.DependencyMapFile == ""
	case StageTarget:
		return !p.cfg.Target.Enabled
	}
	return false
}

// timed wraps a stage with logging and metrics, translating failures into
// StageError.
func (p *Pipeline) timed(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}

	start := time.Now()
	p.log.Info("stage starting", logging.Stage(name))

	if err := fn(ctx); err != nil {
		p.metrics.RecordStage(name, "error", time.Since(start))
		p.log.Error("stage failed", logging.Stage(name), logging.Error(err))
		return &StageError{Stage: name, Err: err}
	}

	elapsed := time.Since(start)
	p.metrics.RecordStage(name, "success", elapsed)
	p.log.Info("stage complete", logging.Stage(name), logging.Duration("elapsed", elapsed))
	return nil
}
