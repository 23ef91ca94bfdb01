package metrics

import (
	"context"

	"github.com/kilianp07/flightrecovery/core/events"
	"github.com/kilianp07/flightrecovery/core/logger"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
	"github.com/kilianp07/flightrecovery/core/runlog"
	"github.com/kilianp07/flightrecovery/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards solver events
// to the sink and, when store is non-nil, to the run log. It stops when the
// context is canceled or the bus is closed; the returned channel is closed
// once every buffered event has been handled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, store runlog.Store, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || (sink == nil && store == nil) {
		close(done)
		return done
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	sub := bus.Subscribe()
	c := &collector{sink: sink, store: store, log: log}
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				c.handle(ctx, ev)
			}
		}
	}()
	return done
}

type collector struct {
	sink  coremetrics.MetricsSink
	store runlog.Store
	log   logger.Logger
}

func (c *collector) handle(ctx context.Context, ev eventbus.Event) {
	var (
		rec runlog.Record
		err error
	)
	switch e := ev.(type) {
	case events.IterationEvent:
		err = c.sink.RecordIteration(e)
		rec = runlog.FromIteration(e)
	case events.ScenarioEvent:
		if r, ok := c.sink.(coremetrics.ScenarioRecorder); ok {
			err = r.RecordScenario(e)
		}
		rec = runlog.FromScenario(e)
	case events.RunEvent:
		if r, ok := c.sink.(coremetrics.RunRecorder); ok {
			err = r.RecordRun(coremetrics.FromRunEvent(e))
		}
		rec = runlog.FromRun(e)
	default:
		return
	}
	if err != nil && c.log != nil {
		c.log.Warnf("metrics sink: %v", err)
	}
	if c.store == nil {
		return
	}
	if err := c.store.Append(ctx, rec); err != nil && c.log != nil {
		c.log.Warnf("run log append: %v", err)
	}
}
