// Command mart runs one full mart rebuild from a pipeline config file.
//
// Usage:
//
//	mart -config path/to/pipeline.json
//
// Config may be JSON or YAML. A .env file in the working directory is
// loaded if present; MART_* environment variables override the file (see
// internal/config).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Bdemirbelul/DemirAI-v2/internal/config"
	"github.com/Bdemirbelul/DemirAI-v2/internal/metrics"
	"github.com/Bdemirbelul/DemirAI-v2/internal/metrics/datadog"
	"github.com/Bdemirbelul/DemirAI-v2/internal/pipeline"

	// Registered storage backends.
	_ "github.com/Bdemirbelul/DemirAI-v2/internal/storage/mssql"
	_ "github.com/Bdemirbelul/DemirAI-v2/internal/storage/postgres"
	_ "github.com/Bdemirbelul/DemirAI-v2/internal/storage/sqlite"
)

type zapPrintf struct {
	s *zap.SugaredLogger
}

func (z zapPrintf) Printf(format string, v ...any) { z.s.Infof(format, v...) }

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to pipeline config (JSON or YAML)")
	flag.Parse()

	if cfgPath == "" {
		fmt.Fprintln(os.Stderr, "usage: mart -config path/to/pipeline.json")
		os.Exit(2)
	}

	// Optional .env for local runs; absence is not an error.
	_ = godotenv.Load()

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ok")
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	env, err := config.ReadEnv()
	if err != nil {
		return err
	}
	env.Apply(&cfg)

	zl, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zl.Sync()

	runID := uuid.NewString()
	sugar := zl.Sugar().With("job", cfg.Job, "run_id", runID)

	ctx := context.Background()

	var backend metrics.Backend = metrics.Nop{}
	if cfg.Metrics.Backend == "datadog" {
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    cfg.Job,
			Tags:       append([]string{"run_id:" + runID}, cfg.Metrics.Tags...),
			FlushEvery: time.Duration(cfg.Metrics.FlushEvery) * time.Second,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := dd.Close(); err != nil {
				sugar.Warnf("metrics flush: %v", err)
			}
		}()
		backend = dd
	}

	r := pipeline.NewDefaultRunner()
	r.Logger = zapPrintf{s: sugar}
	r.Metrics = backend

	return r.Run(ctx, cfg)
}
