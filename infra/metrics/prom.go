package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/homeopt/core/metrics"
)

// PromSink exposes optimization progress as Prometheus metrics.
type PromSink struct {
	generations    prometheus.Counter
	generation     prometheus.Gauge
	frontSize      prometheus.Gauge
	bestCost       prometheus.Gauge
	bestDiscomfort prometheus.Gauge
	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
}

// NewPromSink registers the optimizer metrics on the default registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg. A nil registerer
// defaults to the global one. Collectors already registered by an earlier
// sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.generations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homeopt_generations_total",
		Help: "Total number of completed generations",
	})); err != nil {
		return nil, err
	}
	if s.generation, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homeopt_generation",
		Help: "Index of the last emitted generation",
	})); err != nil {
		return nil, err
	}
	if s.frontSize, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homeopt_pareto_front_size",
		Help: "Number of schedules in the current Pareto front",
	})); err != nil {
		return nil, err
	}
	if s.bestCost, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homeopt_best_cost",
		Help: "Lowest energy cost in the current Pareto front",
	})); err != nil {
		return nil, err
	}
	if s.bestDiscomfort, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homeopt_best_discomfort",
		Help: "Lowest discomfort in the current Pareto front",
	})); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homeopt_runs_total",
		Help: "Finished optimization runs by outcome",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homeopt_run_duration_seconds",
		Help:    "Wall time of finished optimization runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"status"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordGeneration updates the progress gauges.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	if ev.Generation > 0 {
		s.generations.Inc()
	}
	s.generation.Set(float64(ev.Generation))
	s.frontSize.Set(float64(ev.FrontSize))
	s.bestCost.Set(ev.MinCost)
	s.bestDiscomfort.Set(ev.MinDiscomfort)
	return nil
}

// RecordRun counts the run and observes its duration.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	s.runDuration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
	return nil
}
