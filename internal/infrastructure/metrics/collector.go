// Package metrics records population progress as Prometheus metrics.
//
// A seeding run is a batch job, so the collector keeps its own registry and
// writes it out in the node_exporter textfile format at the end of the run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fakeseed"

// Collector implements populate.Observer.
type Collector struct {
	registry *prometheus.Registry

	instances *prometheus.CounterVec
	flushes   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	lastRun   prometheus.Gauge
}

// NewCollector creates a collector on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		instances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_total",
			Help:      "Instances created, by entity.",
		}, []string{"entity"}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Store flushes, by entity.",
		}, []string{"entity"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "entity_duration_seconds",
			Help:      "Time to populate and flush one entity.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"entity"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_flush_timestamp_seconds",
			Help:      "Unix time of the last completed flush.",
		}),
	}
	c.registry.MustRegister(c.instances, c.flushes, c.duration, c.lastRun)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) InstancePopulated(entity string) {
	c.instances.WithLabelValues(entity).Inc()
}

func (c *Collector) EntityFlushed(entity string, _ int, elapsed time.Duration) {
	c.flushes.WithLabelValues(entity).Inc()
	c.duration.WithLabelValues(entity).Observe(elapsed.Seconds())
	c.lastRun.SetToCurrentTime()
}

// WriteTextfile writes all metrics to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
