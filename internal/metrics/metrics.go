// Package metrics exports Prometheus metrics about toast traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmylchreest/toasty/internal/model"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "toasty").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Collector records toast lifecycle metrics. It is registered as a
// registry observer.
type Collector struct {
	pushed  *prometheus.CounterVec
	removed *prometheus.CounterVec
	active  prometheus.Gauge
	lived   *prometheus.HistogramVec
}

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	cfg := Config{
		Namespace: "toasty",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Collector{
		pushed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "toasts_pushed_total",
			Help:      "Total number of toasts pushed",
		}, []string{"variant"}),

		removed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "toasts_removed_total",
			Help:      "Total number of toasts removed",
		}, []string{"reason"}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "toasts_active",
			Help:      "Number of toasts currently shown",
		}),

		lived: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "toast_lifetime_seconds",
			Help:      "Configured toast lifetime in seconds",
			Buckets:   []float64{1, 2, 4, 6, 10, 15, 30, 60},
		}, []string{"variant"}),
	}
}

// Pushed implements registry.Observer.
func (c *Collector) Pushed(item model.Item) {
	c.pushed.WithLabelValues(string(item.Variant)).Inc()
	c.lived.WithLabelValues(string(item.Variant)).Observe(item.Duration.Seconds())
	c.active.Inc()
}

// Removed implements registry.Observer.
func (c *Collector) Removed(_ model.Item, reason model.RemoveReason) {
	c.removed.WithLabelValues(reason.String()).Inc()
	c.active.Dec()
}
