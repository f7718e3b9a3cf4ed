package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/tle-generator/core"
)

// GeneratorCollector bundles Prometheus metrics for element-set generation
// runs. It satisfies core.MetricsRecorder.
type GeneratorCollector struct {
	gatherer prometheus.Gatherer

	RecordsTotal  *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec
	BatchRecords  prometheus.Gauge
	BatchesTotal  *prometheus.CounterVec
}

var _ core.MetricsRecorder = (*GeneratorCollector)(nil)

// NewGeneratorCollector registers generator metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewGeneratorCollector(reg prometheus.Registerer) (*GeneratorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	records, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tlegen_records_total",
		Help: "Orbital rows processed, labeled by outcome kind (none on success).",
	}, []string{"kind"}), "tlegen_records_total")
	if err != nil {
		return nil, err
	}

	batches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tlegen_batches_total",
		Help: "Generation runs, labeled by outcome kind (none on success).",
	}, []string{"kind"}), "tlegen_batches_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tlegen_batch_duration_seconds",
		Help:    "Wall-clock duration of a generation run in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"kind"}), "tlegen_batch_duration_seconds")
	if err != nil {
		return nil, err
	}

	size, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tlegen_batch_records",
		Help: "Number of element sets in the most recent successful batch.",
	}), "tlegen_batch_records")
	if err != nil {
		return nil, err
	}

	return &GeneratorCollector{
		gatherer:      gatherer,
		RecordsTotal:  records,
		BatchDuration: durations,
		BatchRecords:  size,
		BatchesTotal:  batches,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *GeneratorCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// RecordProcessed counts one processed row.
func (c *GeneratorCollector) RecordProcessed(kind string) {
	if c == nil || c.RecordsTotal == nil {
		return
	}
	c.RecordsTotal.WithLabelValues(kind).Inc()
}

// BatchCompleted records the outcome of one generation run. The record gauge
// only moves on success.
func (c *GeneratorCollector) BatchCompleted(records int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	kind := core.ErrorKind(err)
	if c.BatchesTotal != nil {
		c.BatchesTotal.WithLabelValues(kind).Inc()
	}
	if c.BatchDuration != nil {
		c.BatchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
	if err == nil && c.BatchRecords != nil {
		c.BatchRecords.Set(float64(records))
	}
}

// WriteTextfile dumps the gathered metrics in the node_exporter textfile
// format, replacing path atomically.
func (c *GeneratorCollector) WriteTextfile(path string) error {
	g := c.Gatherer()
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
