package runlog

import (
	"context"
	"time"

	"github.com/kilianp07/flightrecovery/core/events"
)

// Record kinds.
const (
	KindRun       = "run"
	KindIteration = "iteration"
	KindScenario  = "scenario"
)

// Record captures one step of a Benders run.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	Iteration  int       `json:"iteration,omitempty"`
	Scenario   int       `json:"scenario,omitempty"`
	LowerBound float64   `json:"lower_bound,omitempty"`
	UpperBound float64   `json:"upper_bound,omitempty"`
	Gap        float64   `json:"gap,omitempty"`
	CutsAdded  int       `json:"cuts_added,omitempty"`
	Columns    int       `json:"columns,omitempty"`
	Objective  float64   `json:"objective,omitempty"`
	Passes     int       `json:"passes,omitempty"`
	EarlyExit  bool      `json:"early_exit,omitempty"`
	Status     string    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS float64   `json:"duration_ms,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start time.Time
	End   time.Time
	RunID string
	Kind  string
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// FromIteration converts an iteration event into a Record.
func FromIteration(ev events.IterationEvent) Record {
	return Record{
		Timestamp:  stamp(ev.Time),
		RunID:      ev.RunID,
		Kind:       KindIteration,
		Iteration:  ev.Iteration,
		LowerBound: ev.LowerBound,
		UpperBound: finite(ev.UpperBound),
		Gap:        finite(ev.Gap),
		CutsAdded:  ev.CutsAdded,
		Columns:    ev.Columns,
		Objective:  ev.RescheduleCost,
		DurationMS: ms(ev.Duration),
	}
}

// FromScenario converts a scenario event into a Record.
func FromScenario(ev events.ScenarioEvent) Record {
	return Record{
		Timestamp:  stamp(ev.Time),
		RunID:      ev.RunID,
		Kind:       KindScenario,
		Iteration:  ev.Iteration,
		Scenario:   ev.Scenario,
		Objective:  ev.Objective,
		Passes:     ev.Passes,
		Columns:    ev.Columns,
		EarlyExit:  ev.EarlyExit,
		DurationMS: ms(ev.Duration),
	}
}

// FromRun converts a run event into a Record.
func FromRun(ev events.RunEvent) Record {
	r := Record{Timestamp: stamp(ev.Time), RunID: ev.RunID, Kind: KindRun, Status: ev.Status}
	if ev.Err != nil {
		r.Error = ev.Err.Error()
	}
	return r
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// finite maps infinities to zero; encoding/json rejects them.
func finite(v float64) float64 {
	if v > 1e300 || v < -1e300 {
		return 0
	}
	return v
}
