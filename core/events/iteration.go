package events

import "time"

// IterationEvent is published by the Benders coordinator after each master
// re-solve.
type IterationEvent struct {
	RunID          string
	Iteration      int
	LowerBound     float64
	UpperBound     float64
	Gap            float64
	CutsAdded      int
	Columns        int
	RescheduleCost float64
	Duration       time.Duration
	Time           time.Time
}

// ScenarioEvent is published for each scenario subproblem solved.
type ScenarioEvent struct {
	RunID     string
	Iteration int
	Scenario  int
	Objective float64
	Passes    int
	Columns   int
	EarlyExit bool
	Duration  time.Duration
	Time      time.Time
}
