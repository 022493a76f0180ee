// Package prometheus provides a Prometheus-backed stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/discochess/evalbar/internal/stats"
)

// Collector implements stats.Collector with lazily registered Prometheus metrics.
type Collector struct {
	registry prometheus.Registerer
	logger   *zap.Logger

	counters   *family[prometheus.Counter]
	gauges     *family[prometheus.Gauge]
	histograms *family[prometheus.Histogram]
}

var _ stats.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger that reports metrics the registry rejected.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New creates a collector registering into registry.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer, opts ...Option) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	c := &Collector{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.counters = newFamily(c, func(name string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: name})
	})
	c.gauges = newFamily(c, func(name string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: name})
	})
	c.histograms = newFamily(c, func(name string) prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    name,
			Buckets: prometheus.DefBuckets,
		})
	})
	return c
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	c.counters.get(name).Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	c.gauges.get(name).Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.histograms.get(name).Observe(value)
}

// family holds the metrics of one kind, created on first use.
type family[M prometheus.Collector] struct {
	registry prometheus.Registerer
	logger   *zap.Logger
	create   func(name string) M

	mu      sync.RWMutex
	metrics map[string]M
}

func newFamily[M prometheus.Collector](c *Collector, create func(string) M) *family[M] {
	return &family[M]{
		registry: c.registry,
		logger:   c.logger,
		create:   create,
		metrics:  make(map[string]M),
	}
}

func (f *family[M]) get(name string) M {
	f.mu.RLock()
	m, ok := f.metrics[name]
	f.mu.RUnlock()
	if ok {
		return m
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok = f.metrics[name]; ok {
		return m
	}

	m = f.create(name)
	if err := f.registry.Register(m); err != nil {
		// Reuse a metric someone else registered under the same name.
		var are prometheus.AlreadyRegisteredError
		var existing M
		reuse := false
		if errors.As(err, &are) {
			existing, reuse = are.ExistingCollector.(M)
		}
		if reuse {
			m = existing
		} else {
			// The metric stays unregistered; cache it so the error is
			// reported once per name.
			f.logger.Warn("metric not registered, values will not be exported",
				zap.String("metric", name),
				zap.Error(err),
			)
		}
	}
	f.metrics[name] = m
	return m
}
