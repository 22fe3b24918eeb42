package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for pipeline runs.
type Metrics struct {
	SourceFetchesTotal  *prometheus.CounterVec
	SourceFailuresTotal *prometheus.CounterVec
	SourceRecordsTotal  *prometheus.CounterVec
	RunsTotal           *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	RawRecords          prometheus.Gauge
	MergedRecords       prometheus.Gauge
	DatasetSize         prometheus.Gauge
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SourceFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_source_fetches_total",
				Help: "Fetch attempts per source.",
			},
			[]string{"source"},
		),
		SourceFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_source_failures_total",
				Help: "Failed fetches per source.",
			},
			[]string{"source"},
		),
		SourceRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_source_records_total",
				Help: "Raw records contributed per source.",
			},
			[]string{"source"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Pipeline runs by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_run_duration_seconds",
				Help:    "Wall time of a full pipeline run.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		),
		RawRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_raw_records",
				Help: "Raw records gathered in the last run.",
			},
		),
		MergedRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_merged_records",
				Help: "Records remaining after deduplication in the last run.",
			},
		),
		DatasetSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_dataset_size",
				Help: "Festivals in the last published dataset.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.SourceFetchesTotal,
			m.SourceFailuresTotal,
			m.SourceRecordsTotal,
			m.RunsTotal,
			m.RunDuration,
			m.RawRecords,
			m.MergedRecords,
			m.DatasetSize,
		)
	}

	return m
}
