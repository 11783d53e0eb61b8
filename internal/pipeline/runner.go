// Package pipeline wires the four stages of a mart rebuild: load raw rows,
// normalize them into staging, build the three dimensions, assemble facts,
// then atomically replace the mart tables.
//
// Stage order is a hard dependency, not a preference: the fact assembler
// resolves surrogate keys against completed dimensions, so dimensions must
// be fully built before assembly starts.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Bdemirbelul/DemirAI-v2/internal/config"
	"github.com/Bdemirbelul/DemirAI-v2/internal/listing"
	"github.com/Bdemirbelul/DemirAI-v2/internal/mart"
	"github.com/Bdemirbelul/DemirAI-v2/internal/metrics"
	csvparser "github.com/Bdemirbelul/DemirAI-v2/internal/parser/csv"
	"github.com/Bdemirbelul/DemirAI-v2/internal/parser/jsonl"
	"github.com/Bdemirbelul/DemirAI-v2/internal/storage"
)

// Logger is the minimal logging interface used by the runner.
// *log.Logger and zap's SugaredLogger (via an adapter) both satisfy it.
type Logger interface {
	Printf(format string, v ...any)
}

// LoadFn is a seam for providing raw rows.
//
// When to use:
//   - Unit tests: inject a deterministic batch without file I/O or parsers.
//   - Alternate runtimes: route rows from other sources.
type LoadFn func(ctx context.Context, cfg config.Pipeline) ([]listing.Raw, error)

// Runner executes one full mart rebuild.
type Runner struct {
	// NewRepository is a storage-agnostic factory seam.
	NewRepository func(ctx context.Context, cfg storage.Config) (storage.Repository, error)

	Metrics metrics.Backend
	Logger  Logger

	// Load is an optional seam to make Runner unit-testable.
	// When nil, the configured file source and parser are used.
	Load LoadFn
}

// NewDefaultRunner returns a Runner wired to the registered storage
// backends and a nop metrics backend.
func NewDefaultRunner() *Runner {
	return &Runner{
		NewRepository: storage.New,
		Metrics:       metrics.Nop{},
	}
}

// Run executes the batch: load -> normalize -> dimensions -> facts ->
// replace. Any stage error aborts the whole run; the repository's
// transactional replace guarantees readers never see partial mart state.
func (r *Runner) Run(ctx context.Context, cfg config.Pipeline) error {
	if r.NewRepository == nil {
		return fmt.Errorf("pipeline: NewRepository is required")
	}

	logf := r.logger()
	m := r.metrics()
	runStart := time.Now()

	loadStart := time.Now()
	raws, err := r.loadRaw(ctx, cfg)
	if err != nil {
		return err
	}
	logf("stage=load ok rows=%d duration=%s", len(raws), durMS(loadStart))
	m.Count("mart.rows.raw", float64(len(raws)))
	m.Timing("mart.stage.load", time.Since(loadStart))

	normStart := time.Now()
	staging := normalizeAll(raws, cfg.Runtime.NormalizeWorkers)
	logf("stage=normalize ok rows=%d duration=%s", len(staging), durMS(normStart))
	m.Count("mart.rows.staging", float64(len(staging)))
	m.Timing("mart.stage.normalize", time.Since(normStart))

	dimStart := time.Now()
	dims := mart.BuildDimensions(staging)
	logf(
		"stage=build_dims ok vehicles=%d sellers=%d times=%d duration=%s",
		len(dims.Vehicles), len(dims.Sellers), len(dims.Times), durMS(dimStart),
	)
	m.Count("mart.dim.vehicle.rows", float64(len(dims.Vehicles)))
	m.Count("mart.dim.seller.rows", float64(len(dims.Sellers)))
	m.Count("mart.dim.time.rows", float64(len(dims.Times)))
	m.Timing("mart.stage.build_dims", time.Since(dimStart))

	factStart := time.Now()
	var factSeq mart.Sequence
	facts, err := mart.AssembleFacts(staging, dims, &factSeq)
	if err != nil {
		return err
	}
	logf("stage=assemble_facts ok rows=%d duration=%s", len(facts), durMS(factStart))
	m.Count("mart.fact.rows", float64(len(facts)))
	m.Timing("mart.stage.assemble_facts", time.Since(factStart))

	writeStart := time.Now()
	repo, err := r.NewRepository(ctx, storage.Config{
		Kind: cfg.Storage.Kind,
		DSN:  os.ExpandEnv(cfg.Storage.DSN),
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	snap := &mart.Snapshot{
		Vehicles: dims.Vehicles,
		Sellers:  dims.Sellers,
		Times:    dims.Times,
		Facts:    facts,
	}
	if err := repo.ReplaceMart(ctx, snap); err != nil {
		return err
	}
	logf("stage=replace_mart ok duration=%s", durMS(writeStart))
	m.Timing("mart.stage.replace", time.Since(writeStart))
	m.Timing("mart.run", time.Since(runStart))

	return nil
}

// loadRaw streams the configured source through the configured parser and
// collects the raw layer. Row-level parse problems are logged and skipped;
// the raw layer accepts whatever survives as-is.
func (r *Runner) loadRaw(ctx context.Context, cfg config.Pipeline) ([]listing.Raw, error) {
	if r.Load != nil {
		return r.Load(ctx, cfg)
	}

	f, err := os.Open(cfg.Source.File.Path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	logf := r.logger()
	m := r.metrics()

	out := make(chan listing.Raw, 256)
	onErr := func(line int, err error) {
		logf("stage=load skip line=%d err=%v", line, err)
		m.Count("mart.rows.skipped", 1)
	}

	var streamErr error
	go func() {
		defer close(out)
		streamErr = streamRaw(ctx, cfg.Parser, f, out, onErr)
	}()

	var raws []listing.Raw
	for raw := range out {
		raws = append(raws, raw)
	}
	if streamErr != nil {
		return nil, streamErr
	}
	return raws, nil
}

func streamRaw(
	ctx context.Context,
	p config.Parser,
	src io.ReadCloser,
	out chan<- listing.Raw,
	onErr func(line int, err error),
) error {
	switch p.Kind {
	case "csv":
		return csvparser.StreamRaw(ctx, src, p.Options, out, onErr)
	case "jsonl":
		return jsonl.StreamRaw(ctx, src, p.Options, out, onErr)
	default:
		src.Close()
		return fmt.Errorf("unsupported parser.kind=%s", p.Kind)
	}
}

// normalizeAll derives the staging layer. Rows are sharded across workers;
// each worker writes disjoint indices, so the result is deterministic and
// ordered regardless of worker count. Dedup and id assignment happen later,
// after this merge barrier, on a single goroutine.
func normalizeAll(raws []listing.Raw, workers int) []listing.Staging {
	out := make([]listing.Staging, len(raws))
	if len(raws) == 0 {
		return out
	}
	if workers <= 1 {
		for i, raw := range raws {
			out[i] = listing.Normalize(raw)
		}
		return out
	}

	var wg sync.WaitGroup
	chunk := (len(raws) + workers - 1) / workers
	for start := 0; start < len(raws); start += chunk {
		end := start + chunk
		if end > len(raws) {
			end = len(raws)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = listing.Normalize(raws[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

func (r *Runner) logger() func(format string, v ...any) {
	if r.Logger == nil {
		l := log.New(io.Discard, "", 0)
		return l.Printf
	}
	return r.Logger.Printf
}

func (r *Runner) metrics() metrics.Backend {
	if r.Metrics == nil {
		return metrics.Nop{}
	}
	return r.Metrics
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }
