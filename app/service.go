// Package app wires the solver with its observability stack.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/flightrecovery/config"
	"github.com/kilianp07/flightrecovery/core/benders"
	"github.com/kilianp07/flightrecovery/core/delay"
	"github.com/kilianp07/flightrecovery/core/instance"
	"github.com/kilianp07/flightrecovery/core/lp"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/quality"
	"github.com/kilianp07/flightrecovery/core/runlog"
	"github.com/kilianp07/flightrecovery/infra/logger"
	"github.com/kilianp07/flightrecovery/infra/metrics"
	"github.com/kilianp07/flightrecovery/internal/eventbus"
)

// busSize buffers one iteration worth of scenario events for large runs.
const busSize = 1024

// Service orchestrates the Benders solver, the metrics sinks and the run log.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	lp    lp.Solver
	bus   *eventbus.Bus
	sink  coremetrics.MetricsSink
	store runlog.Store

	stop      context.CancelFunc
	collected <-chan struct{}
}

// New creates a Service from the configuration and starts the event
// collector. The Prometheus endpoint is served when a prometheus sink is
// configured.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("app")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := runlog.Open(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	bus := eventbus.NewTypedSize[eventbus.Event](busSize)
	svc := &Service{
		cfg:   cfg,
		log:   logg,
		lp:    lp.NewSimplex(),
		bus:   bus,
		sink:  sink,
		store: store,
		stop:  stop,
	}
	svc.collected = metrics.StartEventCollector(ctx, bus, sink, store, logger.New("metrics"))

	if cfg.Metrics.HasSink("prometheus") && cfg.Metrics.ListenAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.ListenAddr, nil, logg); err != nil {
				logg.Errorf("prom server: %v", err)
			}
		}()
	}
	return svc, nil
}

// Bus exposes the event bus the solver publishes on.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Scenarios returns the instance scenarios, or samples them from the
// configured delay distribution when the instance lists none.
func (s *Service) Scenarios(inst *instance.Instance) ([]model.Scenario, error) {
	if len(inst.Scenarios) > 0 {
		return inst.Scenarios, nil
	}
	gen, err := delay.NewGenerator(s.cfg.Scenarios, inst.Registry.Legs())
	if err != nil {
		return nil, fmt.Errorf("scenario generator: %w", err)
	}
	scenarios := gen.Generate()
	s.log.Infof("generated %d %s scenarios", len(scenarios), s.cfg.Scenarios.Distribution)
	return scenarios, nil
}

// Solve runs the decomposition on inst. A non-nil warm vector, or the
// warm_start setting, seeds the master with an evaluated reschedule; the
// setting alone uses the original schedule.
func (s *Service) Solve(ctx context.Context, inst *instance.Instance, warm []int) (*benders.Result, error) {
	scenarios, err := s.Scenarios(inst)
	if err != nil {
		return nil, err
	}
	solver, err := benders.NewSolver(inst.Registry, scenarios, s.cfg.Solver, s.lp, s.bus, logger.New("benders"))
	if err != nil {
		return nil, err
	}
	if warm == nil && s.cfg.Solver.WarmStart {
		warm = make([]int, inst.Registry.NumLegs())
	}
	if warm != nil {
		if err := solver.WarmStart(warm); err != nil {
			return nil, err
		}
	}
	s.log.Infof("run %s: %d legs, %d tails, %d scenarios", solver.RunID(),
		inst.Registry.NumLegs(), len(inst.Registry.Tails()), len(scenarios))
	return solver.Solve(ctx)
}

// Evaluate compares reschedules against the original schedule.
func (s *Service) Evaluate(ctx context.Context, inst *instance.Instance, reschedules []int) (*quality.Comparison, error) {
	scenarios, err := s.Scenarios(inst)
	if err != nil {
		return nil, err
	}
	ev := quality.NewEvaluator(inst.Registry, s.lp, s.cfg.Solver.SecondStageOptions(), logger.New("quality"))
	return ev.Compare(ctx, reschedules, scenarios)
}

// Close drains pending events and releases the sinks and the run log.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collected
	s.stop()
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d solver events dropped before reaching the sinks", n)
	}
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
