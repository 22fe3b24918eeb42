// Package pipeline turns raw per-source festival records into one canonical,
// deduplicated dataset with stable identifiers and aggregate statistics.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yair/festival-atlas/pkg/domain"
)

// Provider is the boundary between a source and the pipeline: one operation
// returning fully normalized records. Implementations swallow their own
// partial failures; a returned error means the source contributed nothing
// this run.
type Provider interface {
	Source() domain.Source
	Fetch(ctx context.Context) ([]domain.Festival, error)
}

// Config controls how a run gathers raw records.
type Config struct {
	// FetchTimeout bounds the whole gather phase.
	FetchTimeout time.Duration
	// MaxConcurrentFetch caps how many providers fetch at once.
	MaxConcurrentFetch int
}

// Runner sequences the normalization pipeline over a set of source
// providers. It holds no storage knowledge; the caller persists the
// returned dataset.
type Runner struct {
	providers []Provider
	config    Config
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner builds a Runner over the given providers. metrics may be nil.
func NewRunner(providers []Provider, config Config, metrics *Metrics) *Runner {
	if config.FetchTimeout == 0 {
		config.FetchTimeout = 2 * time.Minute
	}
	if config.MaxConcurrentFetch == 0 {
		config.MaxConcurrentFetch = 4
	}

	return &Runner{
		providers: providers,
		config:    config,
		metrics:   metrics,
		logger:    slog.Default().With("component", "pipeline"),
		now:       time.Now,
	}
}

type fetchResult struct {
	source  domain.Source
	records []domain.Festival
	err     error
}

// Run executes one full refresh: gather, deduplicate, filter, sort, slug,
// count, envelope. A failing source contributes nothing and never aborts
// the run; an empty gather yields a valid empty dataset.
func (r *Runner) Run(ctx context.Context) (*domain.Dataset, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	started := r.now()

	logger.Info("starting festival data refresh", "providers", len(r.providers))

	raw := r.gather(ctx, logger)
	logger.Info("raw records gathered", "count", len(raw))
	if r.metrics != nil {
		r.metrics.RawRecords.Set(float64(len(raw)))
	}

	deduplicated := Deduplicate(raw)
	if r.metrics != nil {
		r.metrics.MergedRecords.Set(float64(len(deduplicated)))
	}

	withLocation := FilterByLocation(deduplicated)
	withLineup := FilterByLineup(withLocation)

	sort.SliceStable(withLineup, func(i, j int) bool {
		return withLineup[i].StartDate < withLineup[j].StartDate
	})

	DisambiguateSlugs(withLineup)

	stats := ComputeStats(withLineup)

	dataset := &domain.Dataset{
		Festivals:     withLineup,
		LastRefreshed: r.now(),
		TotalCount:    len(withLineup),
		GenreCounts:   stats.GenreCounts,
		CountryCounts: stats.CountryCounts,
	}

	if r.metrics != nil {
		r.metrics.DatasetSize.Set(float64(dataset.TotalCount))
		r.metrics.RunsTotal.WithLabelValues("ok").Inc()
		r.metrics.RunDuration.Observe(r.now().Sub(started).Seconds())
	}

	logger.Info("refresh complete",
		"total", dataset.TotalCount,
		"duration", r.now().Sub(started).String(),
	)

	return dataset, nil
}

// gather fans out over all providers with bounded concurrency and a shared
// deadline, concatenating whatever the successful ones return.
func (r *Runner) gather(ctx context.Context, logger *slog.Logger) []domain.Festival {
	ctx, cancel := context.WithTimeout(ctx, r.config.FetchTimeout)
	defer cancel()

	resultsChan := make(chan fetchResult, len(r.providers))
	semaphore := make(chan struct{}, r.config.MaxConcurrentFetch)

	var wg sync.WaitGroup
	for _, provider := range r.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if r.metrics != nil {
				r.metrics.SourceFetchesTotal.WithLabelValues(string(p.Source())).Inc()
			}

			records, err := p.Fetch(ctx)
			resultsChan <- fetchResult{
				source:  p.Source(),
				records: records,
				err:     err,
			}
		}(provider)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var all []domain.Festival
	for result := range resultsChan {
		if result.err != nil {
			logger.Error("source fetch failed, continuing without it",
				"source", result.source,
				"error", result.err,
			)
			if r.metrics != nil {
				r.metrics.SourceFailuresTotal.WithLabelValues(string(result.source)).Inc()
			}
			continue
		}

		logger.Info("source fetched",
			"source", result.source,
			"records", len(result.records),
		)
		if r.metrics != nil {
			r.metrics.SourceRecordsTotal.WithLabelValues(string(result.source)).Add(float64(len(result.records)))
		}
		all = append(all, result.records...)
	}

	return all
}
