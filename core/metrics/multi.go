package metrics

import "github.com/kilianp07/flightrecovery/core/events"

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordIteration forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordIteration(ev events.IterationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordIteration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordScenario forwards scenario records when supported by the sink.
func (m *MultiSink) RecordScenario(ev events.ScenarioEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ScenarioRecorder); ok {
			if err := rec.RecordScenario(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRun forwards run status changes when supported by the sink.
func (m *MultiSink) RecordRun(st RunStatus) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			if err := rec.RecordRun(st); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
