package metrics

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/kilianp07/flightrecovery/core/events"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
	coremqtt "github.com/kilianp07/flightrecovery/core/mqtt"
)

// MQTTSink publishes Benders progress as JSON messages under a topic prefix:
// <prefix>/iteration, <prefix>/scenario and <prefix>/status.
type MQTTSink struct {
	pub    coremqtt.Publisher
	prefix string
}

// NewMQTTSink wraps a publisher. An empty prefix defaults to "flightrecovery".
func NewMQTTSink(pub coremqtt.Publisher, prefix string) *MQTTSink {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		prefix = "flightrecovery"
	}
	return &MQTTSink{pub: pub, prefix: prefix}
}

type iterationMessage struct {
	RunID          string   `json:"run_id"`
	Iteration      int      `json:"iteration"`
	LowerBound     float64  `json:"lower_bound"`
	UpperBound     *float64 `json:"upper_bound"`
	Gap            *float64 `json:"gap"`
	CutsAdded      int      `json:"cuts_added"`
	Columns        int      `json:"columns"`
	RescheduleCost float64  `json:"reschedule_cost"`
	DurationMS     float64  `json:"duration_ms"`
	Timestamp      int64    `json:"timestamp"`
}

type scenarioMessage struct {
	RunID      string  `json:"run_id"`
	Iteration  int     `json:"iteration"`
	Scenario   int     `json:"scenario"`
	Objective  float64 `json:"objective"`
	Passes     int     `json:"passes"`
	Columns    int     `json:"columns"`
	EarlyExit  bool    `json:"early_exit"`
	DurationMS float64 `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
}

type statusMessage struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// RecordIteration publishes the iteration bounds. Infinite values are sent as null.
func (s *MQTTSink) RecordIteration(ev events.IterationEvent) error {
	return s.publish("iteration", iterationMessage{
		RunID:          ev.RunID,
		Iteration:      ev.Iteration,
		LowerBound:     ev.LowerBound,
		UpperBound:     finitePtr(ev.UpperBound),
		Gap:            finitePtr(ev.Gap),
		CutsAdded:      ev.CutsAdded,
		Columns:        ev.Columns,
		RescheduleCost: ev.RescheduleCost,
		DurationMS:     round3(ev.Duration.Seconds() * 1000),
		Timestamp:      millis(ev.Time),
	})
}

// RecordScenario publishes a scenario solve summary.
func (s *MQTTSink) RecordScenario(ev events.ScenarioEvent) error {
	return s.publish("scenario", scenarioMessage{
		RunID:      ev.RunID,
		Iteration:  ev.Iteration,
		Scenario:   ev.Scenario,
		Objective:  ev.Objective,
		Passes:     ev.Passes,
		Columns:    ev.Columns,
		EarlyExit:  ev.EarlyExit,
		DurationMS: round3(ev.Duration.Seconds() * 1000),
		Timestamp:  millis(ev.Time),
	})
}

// RecordRun publishes the run status.
func (s *MQTTSink) RecordRun(st coremetrics.RunStatus) error {
	return s.publish("status", statusMessage{
		RunID:     st.RunID,
		Status:    st.Status,
		Error:     st.Error,
		Timestamp: millis(st.Time),
	})
}

func (s *MQTTSink) publish(kind string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.pub.Publish(s.prefix+"/"+kind, payload)
}

func finitePtr(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

// Close disconnects the underlying client when it supports it.
func (s *MQTTSink) Close() {
	if c, ok := s.pub.(interface{ Disconnect() }); ok {
		c.Disconnect()
	}
}
