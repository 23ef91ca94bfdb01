package metrics

import (
	"time"

	"github.com/kilianp07/flightrecovery/core/events"
)

// MetricsSink records Benders iterations for observability purposes.
type MetricsSink interface {
	RecordIteration(ev events.IterationEvent) error
}

// ScenarioRecorder records individual scenario subproblem solves.
type ScenarioRecorder interface {
	RecordScenario(ev events.ScenarioEvent) error
}

// RunRecorder records the start and the end of a solve.
type RunRecorder interface {
	RecordRun(ev RunStatus) error
}

// RunStatus is the sink-side view of a run event. The error is flattened to
// a string so sinks can store it as a tag or field.
type RunStatus struct {
	RunID  string
	Status string
	Error  string
	Time   time.Time
}

// FromRunEvent converts a bus event into a RunStatus.
func FromRunEvent(ev events.RunEvent) RunStatus {
	st := RunStatus{RunID: ev.RunID, Status: ev.Status, Time: ev.Time}
	if ev.Err != nil {
		st.Error = ev.Err.Error()
	}
	if st.Time.IsZero() {
		st.Time = time.Now()
	}
	return st
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordIteration(events.IterationEvent) error { return nil }
func (NopSink) RecordScenario(events.ScenarioEvent) error   { return nil }
func (NopSink) RecordRun(RunStatus) error                   { return nil }
