// Package datadog implements a Datadog backend for the internal/metrics
// package.
//
// The backend buffers metrics in memory, flushes on a ticker (default once
// per minute) and flushes one final time on Close(). Short rebuilds get a
// single tail submission; long rebuilds get a time series while running.
//
// Concurrency model:
//   - pipeline goroutines call Count/Timing at any time
//   - Flush snapshots and resets the buffers under a mutex, then submits
//     out-of-lock
//   - the flush loop calls Flush() periodically; Close() stops the loop
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"github.com/Bdemirbelul/DemirAI-v2/internal/metrics"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to "mart".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets them; unit tests
	// use them to avoid real network submission and nondeterministic
	// clocks/tickers.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal interface needed to submit metrics. The
// SDK exposes a concrete *datadogV2.MetricsApi; depending on this interface
// instead enables deterministic tests with a fake submitter.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api ddSubmitCtx

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string
	now      func() time.Time

	mu     sync.Mutex
	counts map[seriesKey]float64
	timing map[seriesKey][]float64
}

type ddSubmitCtx struct {
	ctx context.Context
	sub metricsSubmitter
}

type seriesKey struct {
	name string
	tags string // sorted, comma-joined
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client.
// Credentials come from the standard DD_API_KEY/DD_SITE environment via
// datadog.NewDefaultContext.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "mart"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	sub := opts.submitter
	ctx := parent
	if sub == nil {
		cfg := dd.NewConfiguration()
		client := dd.NewAPIClient(cfg)
		sub = datadogV2.NewMetricsApi(client)
		ctx = dd.NewDefaultContext(parent)
	}

	b := &Backend{
		api:        ddSubmitCtx{ctx: ctx, sub: sub},
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		counts:     make(map[seriesKey]float64),
		timing:     make(map[seriesKey][]float64),
	}

	go b.loop(newTicker)
	return b, nil
}

func (b *Backend) loop(newTicker func(d time.Duration) *time.Ticker) {
	defer close(b.doneCh)

	t := newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Count implements metrics.Backend.
func (b *Backend) Count(name string, delta float64, tags ...string) {
	k := b.key(name, tags)
	b.mu.Lock()
	b.counts[k] += delta
	b.mu.Unlock()
}

// Timing implements metrics.Backend. Samples are submitted as gauge points
// in seconds.
func (b *Backend) Timing(name string, d time.Duration, tags ...string) {
	k := b.key(name, tags)
	b.mu.Lock()
	b.timing[k] = append(b.timing[k], d.Seconds())
	b.mu.Unlock()
}

func (b *Backend) key(name string, tags []string) seriesKey {
	if len(tags) == 0 {
		return seriesKey{name: name}
	}
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return seriesKey{name: name, tags: strings.Join(sorted, ",")}
}

// Flush submits buffered metrics. Empty buffers submit nothing.
func (b *Backend) Flush() error {
	b.mu.Lock()
	counts := b.counts
	timing := b.timing
	b.counts = make(map[seriesKey]float64)
	b.timing = make(map[seriesKey][]float64)
	b.mu.Unlock()

	if len(counts) == 0 && len(timing) == 0 {
		return nil
	}

	ts := b.now().Unix()
	series := make([]datadogV2.MetricSeries, 0, len(counts)+len(timing))

	for k, v := range counts {
		series = append(series, datadogV2.MetricSeries{
			Metric: k.name,
			Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
			Points: []datadogV2.MetricPoint{{
				Timestamp: dd.PtrInt64(ts),
				Value:     dd.PtrFloat64(v),
			}},
			Tags: b.seriesTags(k),
		})
	}

	for k, samples := range timing {
		points := make([]datadogV2.MetricPoint, 0, len(samples))
		for _, s := range samples {
			points = append(points, datadogV2.MetricPoint{
				Timestamp: dd.PtrInt64(ts),
				Value:     dd.PtrFloat64(s),
			})
		}
		series = append(series, datadogV2.MetricSeries{
			Metric: k.name,
			Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
			Points: points,
			Tags:   b.seriesTags(k),
		})
	}

	// Deterministic submission order keeps tests (and dashboards) stable.
	sort.Slice(series, func(i, j int) bool { return series[i].Metric < series[j].Metric })

	_, _, err := b.api.sub.SubmitMetrics(b.api.ctx, datadogV2.MetricPayload{Series: series})
	return err
}

func (b *Backend) seriesTags(k seriesKey) []string {
	tags := append([]string(nil), b.baseTags...)
	if k.tags != "" {
		tags = append(tags, strings.Split(k.tags, ",")...)
	}
	return tags
}

// Close stops the background flush loop and performs one final Flush().
// Call once; a second Close panics on the closed stop channel, matching
// the usual "close once" contract for process-lifetime backends.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

var _ metrics.Backend = (*Backend)(nil)
