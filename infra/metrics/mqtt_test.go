package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/events"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
)

type message struct {
	topic   string
	payload string
}

type fakePublisher struct {
	msgs []message
	err  error
}

func (f *fakePublisher) Publish(topic string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, message{topic, string(payload)})
	return nil
}

func TestMQTTSink_Messages(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTTSink(pub, "airline/recovery/")
	now := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, sink.RecordIteration(events.IterationEvent{
		RunID: "r1", Iteration: 1, LowerBound: 12, UpperBound: math.Inf(1), Gap: math.Inf(1),
		CutsAdded: 2, Columns: 9, RescheduleCost: 5, Duration: 2 * time.Millisecond, Time: now,
	}))
	require.NoError(t, sink.RecordScenario(events.ScenarioEvent{
		RunID: "r1", Iteration: 1, Scenario: 0, Objective: 30, Passes: 2, Columns: 4, Time: now,
	}))
	require.NoError(t, sink.RecordRun(coremetrics.RunStatus{RunID: "r1", Status: events.RunFinished, Time: now}))

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, "airline/recovery/iteration", pub.msgs[0].topic)
	assert.JSONEq(t, `{"run_id":"r1","iteration":1,"lower_bound":12,"upper_bound":null,"gap":null,
		"cuts_added":2,"columns":9,"reschedule_cost":5,"duration_ms":2,"timestamp":1700000000000}`, pub.msgs[0].payload)
	assert.Equal(t, "airline/recovery/scenario", pub.msgs[1].topic)
	assert.JSONEq(t, `{"run_id":"r1","iteration":1,"scenario":0,"objective":30,"passes":2,"columns":4,
		"early_exit":false,"duration_ms":0,"timestamp":1700000000000}`, pub.msgs[1].payload)
	assert.Equal(t, "airline/recovery/status", pub.msgs[2].topic)
	assert.JSONEq(t, `{"run_id":"r1","status":"finished","timestamp":1700000000000}`, pub.msgs[2].payload)
}

func TestMQTTSink_DefaultPrefixAndErrors(t *testing.T) {
	pub := &fakePublisher{err: assert.AnError}
	sink := NewMQTTSink(pub, "")
	assert.Equal(t, "flightrecovery", sink.prefix)
	assert.ErrorIs(t, sink.RecordIteration(events.IterationEvent{}), assert.AnError)
}
