// Package metrics defines the service's Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "madra"

// Metrics groups every instrument. A nil *Metrics records nothing.
type Metrics struct {
	Simulations       *prometheus.CounterVec
	SimulationSamples prometheus.Histogram
	SimulationSeconds prometheus.Histogram
	Rejected          *prometheus.CounterVec
	Sweeps            *prometheus.CounterVec
	CatalogReloads    *prometheus.CounterVec
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Simulations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulation runs by direction and context.",
		}, []string{"direction", "context"}),
		SimulationSamples: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_samples",
			Help:      "Samples produced per simulation run.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}),
		SimulationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_seconds",
			Help:      "Wall time spent integrating one run.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_rejected_total",
			Help:      "Scenarios rejected before simulation, by reason.",
		}, []string{"reason"}),
		Sweeps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Parameter sweeps by knob.",
		}, []string{"knob"}),
		CatalogReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveSimulation(direction, context string, samples int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Simulations.WithLabelValues(direction, context).Inc()
	m.SimulationSamples.Observe(float64(samples))
	m.SimulationSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSweep(knob string) {
	if m == nil {
		return
	}
	m.Sweeps.WithLabelValues(knob).Inc()
}

func (m *Metrics) ObserveCatalogReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CatalogReloads.WithLabelValues(result).Inc()
}
