package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/flightrecovery/core/events"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
)

// PromSink records Benders progress in Prometheus metrics.
type PromSink struct {
	lowerBound prometheus.Gauge
	upperBound prometheus.Gauge
	gap        prometheus.Gauge
	columns    prometheus.Gauge
	iterations prometheus.Counter
	cuts       prometheus.Counter
	runs       *prometheus.CounterVec
	scenario   *prometheus.HistogramVec
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		lowerBound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "benders_lower_bound",
			Help: "Master objective of the latest Benders iteration",
		}),
		upperBound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "benders_upper_bound",
			Help: "Best evaluated total cost so far",
		}),
		gap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "benders_gap",
			Help: "Relative gap between the bounds",
		}),
		columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "benders_columns",
			Help: "Columns held by the scenario subproblems in the latest iteration",
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benders_iterations_total",
			Help: "Total number of Benders iterations",
		}),
		cuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benders_cuts_total",
			Help: "Total number of cuts added to the master",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benders_runs_total",
			Help: "Solver runs by status",
		}, []string{"status"}),
		scenario: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "benders_scenario_solve_seconds",
			Help:    "Time spent in one scenario subproblem",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"early_exit"}),
	}

	var err error
	if s.lowerBound, err = register(reg, s.lowerBound); err != nil {
		return nil, err
	}
	if s.upperBound, err = register(reg, s.upperBound); err != nil {
		return nil, err
	}
	if s.gap, err = register(reg, s.gap); err != nil {
		return nil, err
	}
	if s.columns, err = register(reg, s.columns); err != nil {
		return nil, err
	}
	if s.iterations, err = register(reg, s.iterations); err != nil {
		return nil, err
	}
	if s.cuts, err = register(reg, s.cuts); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.scenario, err = register(reg, s.scenario); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one exists.
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

// RecordIteration updates the bound gauges and the counters.
func (s *PromSink) RecordIteration(ev events.IterationEvent) error {
	s.lowerBound.Set(ev.LowerBound)
	s.upperBound.Set(ev.UpperBound)
	s.gap.Set(ev.Gap)
	s.columns.Set(float64(ev.Columns))
	s.iterations.Inc()
	s.cuts.Add(float64(ev.CutsAdded))
	return nil
}

// RecordScenario observes the subproblem solve time.
func (s *PromSink) RecordScenario(ev events.ScenarioEvent) error {
	s.scenario.WithLabelValues(strconv.FormatBool(ev.EarlyExit)).Observe(ev.Duration.Seconds())
	return nil
}

// RecordRun counts run status transitions.
func (s *PromSink) RecordRun(st coremetrics.RunStatus) error {
	s.runs.WithLabelValues(st.Status).Inc()
	return nil
}
