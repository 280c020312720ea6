// Package metrics provides batch processing metrics for observability
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// File status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// PipelineMetrics contains Prometheus metrics for spectrum batch processing
type PipelineMetrics struct {
	registry *prometheus.Registry

	filesTotal      *prometheus.CounterVec
	fileErrorsTotal *prometheus.CounterVec
	spectraTotal    prometheus.Counter
	bandsTotal      *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	samplesPerSpec  prometheus.Histogram
}

// NewPipelineMetrics creates and registers new pipeline metrics
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.filesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftirkit_files_total",
			Help: "Total number of input files processed",
		},
		[]string{"format", "status"}, // status: ok, error
	)

	m.fileErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftirkit_file_errors_total",
			Help: "Total number of rejected input files by error type",
		},
		[]string{"error_type"}, // malformed, range, io
	)

	m.spectraTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ftirkit_spectra_total",
			Help: "Total number of spectra that reached alignment",
		},
	)

	m.bandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftirkit_bands_total",
			Help: "Total number of detected bands",
		},
		[]string{"polarity"},
	)

	m.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "ftirkit_batch_duration_seconds",
			Help: "Time taken to process one batch",
			// 1ms to ~16s
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
	)

	m.samplesPerSpec = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftirkit_spectrum_samples",
			Help:    "Number of samples per parsed spectrum",
			Buckets: prometheus.ExponentialBuckets(16, 2, 12),
		},
	)
}

// Describe implements the Collector interface
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.filesTotal.Describe(ch)
	m.fileErrorsTotal.Describe(ch)
	m.spectraTotal.Describe(ch)
	m.bandsTotal.Describe(ch)
	m.batchDuration.Describe(ch)
	m.samplesPerSpec.Describe(ch)
}

// Collect implements the Collector interface
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.filesTotal.Collect(ch)
	m.fileErrorsTotal.Collect(ch)
	m.spectraTotal.Collect(ch)
	m.bandsTotal.Collect(ch)
	m.batchDuration.Collect(ch)
	m.samplesPerSpec.Collect(ch)
}

// RecordFile records one input file outcome
func (m *PipelineMetrics) RecordFile(format, status string) {
	m.filesTotal.WithLabelValues(format, status).Inc()
}

// RecordFileError records why a file was rejected
func (m *PipelineMetrics) RecordFileError(errorType string) {
	m.fileErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordSpectrum records a spectrum that passed parsing and cropping
func (m *PipelineMetrics) RecordSpectrum(samples int) {
	m.spectraTotal.Inc()
	m.samplesPerSpec.Observe(float64(samples))
}

// RecordBands adds detected bands
func (m *PipelineMetrics) RecordBands(polarity string, count int) {
	m.bandsTotal.WithLabelValues(polarity).Add(float64(count))
}

// RecordBatchDuration records the wall time of one batch in seconds
func (m *PipelineMetrics) RecordBatchDuration(seconds float64) {
	m.batchDuration.Observe(seconds)
}

// WriteTextfile writes the current registry state in the Prometheus text
// format, for node_exporter's textfile collector.
func (m *PipelineMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
