package metrics

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/events"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
	"github.com/kilianp07/flightrecovery/core/runlog"
	"github.com/kilianp07/flightrecovery/infra/logger"
	"github.com/kilianp07/flightrecovery/internal/eventbus"
)

type countingSink struct {
	mu         sync.Mutex
	iterations []events.IterationEvent
	scenarios  int
	statuses   []string
}

func (c *countingSink) RecordIteration(ev events.IterationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.iterations = append(c.iterations, ev)
	return nil
}

func (c *countingSink) RecordScenario(events.ScenarioEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenarios++
	return nil
}

func (c *countingSink) RecordRun(st coremetrics.RunStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, st.Status)
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &countingSink{}
	store, err := runlog.NewJSONLStore(filepath.Join(t.TempDir(), "run.jsonl"))
	require.NoError(t, err)

	done := StartEventCollector(context.Background(), bus, sink, store, logger.NopLogger{})
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)

	bus.Publish(events.RunEvent{RunID: "r", Status: events.RunStarted})
	bus.Publish(events.ScenarioEvent{RunID: "r", Iteration: 1, Scenario: 0})
	bus.Publish(events.ScenarioEvent{RunID: "r", Iteration: 1, Scenario: 1})
	bus.Publish(events.IterationEvent{RunID: "r", Iteration: 1, LowerBound: 4})
	bus.Publish("unrelated")
	bus.Publish(events.RunEvent{RunID: "r", Status: events.RunFailed, Err: errors.New("boom")})
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}

	assert.Len(t, sink.iterations, 1)
	assert.Equal(t, 2, sink.scenarios)
	assert.Equal(t, []string{events.RunStarted, events.RunFailed}, sink.statuses)

	recs, err := store.Query(context.Background(), runlog.Query{RunID: "r"})
	require.NoError(t, err)
	assert.Len(t, recs, 5)
	assert.Equal(t, "boom", recs[4].Error)
}

func TestStartEventCollector_NothingToDo(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.New(), nil, nil, nil)
	_, open := <-done
	assert.False(t, open)
}

func TestStartEventCollector_Cancel(t *testing.T) {
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, coremetrics.NopSink{}, nil, nil)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop on cancel")
	}
	assert.Equal(t, 0, bus.Subscribers())
}
