// Package metrics counts what a run parsed and writes the counters in the
// Prometheus text format, for node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/record"
)

const namespace = "logframe"

// RunMetrics holds the counters of one run. It implements parser.Reporter.
type RunMetrics struct {
	registry *prometheus.Registry

	FilesTotal      *prometheus.CounterVec
	RecordsTotal    *prometheus.CounterVec
	LinesTotal      *prometheus.CounterVec
	WarningsTotal   *prometheus.CounterVec
	InferencesTotal *prometheus.CounterVec
	LastRunSeconds  prometheus.Gauge
}

// New creates run metrics on a private registry.
func New() *RunMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &RunMetrics{
		registry: reg,
		FilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "files_total",
			Help:      "Files read, by outcome.",
		}, []string{"status"}), // status: ok, error
		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "records_total",
			Help:      "Records produced per source file.",
		}, []string{"source"}),
		LinesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "lines_total",
			Help:      "Lines read per source file.",
		}, []string{"source"}),
		WarningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "warnings_total",
			Help:      "Header tokens that could not be typed, by kind.",
		}, []string{"kind"}),
		InferencesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "infer",
			Name:      "runs_total",
			Help:      "Schema inferences, by result.",
		}, []string{"result"}), // result: ok, failed
		LastRunSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished.",
		}),
	}
}

// Progress is a no-op; counters are updated when a source is done.
func (m *RunMetrics) Progress(string, int) {}

// Warning counts one untyped token.
func (m *RunMetrics) Warning(_ string, w record.Warning) {
	m.WarningsTotal.WithLabelValues(string(w.Kind)).Inc()
}

// Done records the totals of a finished source.
func (m *RunMetrics) Done(stats parser.Stats) {
	m.RecordsTotal.WithLabelValues(stats.Source).Add(float64(stats.Records))
	m.LinesTotal.WithLabelValues(stats.Source).Add(float64(stats.Lines))
}

// ObserveFile counts a file as parsed or failed.
func (m *RunMetrics) ObserveFile(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FilesTotal.WithLabelValues(status).Inc()
}

// ObserveInference counts an inference attempt.
func (m *RunMetrics) ObserveInference(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.InferencesTotal.WithLabelValues(result).Inc()
}

// WriteTextfile stamps the run time and writes every counter to path.
func (m *RunMetrics) WriteTextfile(path string) error {
	m.LastRunSeconds.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// Registry returns the registry the counters live in.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

var _ parser.Reporter = (*RunMetrics)(nil)
