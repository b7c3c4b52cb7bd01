// Command depnet runs the multi-omics dependency network pipeline: it merges
// omics tables, scores biomarker-dependency correlations, sparsifies the edge
// list, builds the bipartite network, and partitions it into communities.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oncograph/depnet/pkg/config"
	"github.com/oncograph/depnet/pkg/logging"
	"github.com/oncograph/depnet/pkg/metrics"
	"github.com/oncograph/depnet/pkg/pipeline"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	stage := flag.String("stage", "", "Run a single stage instead of the full pipeline")
	dataDir := flag.String("data", "", "Override the input data directory")
	outDir := flag.String("out", "", "Override the output directory")
	listStages := flag.Bool("stages", false, "List stage names and exit")
	flag.Parse()

	if *listStages {
		for _, name := range pipeline.Stages {
			fmt.Println(name)
		}
		return
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
	}

	logger := logging.NewDefaultLogger()
	if cfg.LogLevel != "" {
		logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}

	p, err := pipeline.New(cfg, logger, metrics.DefaultRegistry())
	if err != nil {
		logger.Error("pipeline setup failed", logging.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("depnet starting",
		logging.String("run_id", p.RunID()),
		logging.String("data_dir", cfg.DataDir),
		logging.String("out_dir", cfg.OutDir),
	)

	if *stage != "" {
		err = p.RunStage(ctx, *stage)
	} else {
		err = p.Run(ctx)
	}
	if err != nil {
		logger.Error("run failed", logging.Error(err))
		os.Exit(1)
	}
}
